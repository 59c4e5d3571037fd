package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/notification-center/internal/model"
)

// Command is a parsed palette command.
type Command struct {
	Name string
	Args []string
}

// Palette command names.
const (
	CmdRefresh  = "refresh"
	CmdReadAll  = "read-all"
	CmdTest     = "test"
	CmdType     = "type"
	CmdSeverity = "severity"
	CmdUnread   = "unread"
	CmdClear    = "clear"
	CmdSound    = "sound"
	CmdAuto     = "auto"
	CmdInterval = "interval"
	CmdStats    = "stats"
	CmdHistory  = "history"
	CmdSettings = "settings"
	CmdQuit     = "quit"
)

// Names lists every command, used for completion.
var Names = []string{
	CmdRefresh, CmdReadAll, CmdTest, CmdType, CmdSeverity, CmdUnread,
	CmdClear, CmdSound, CmdAuto, CmdInterval, CmdStats, CmdHistory,
	CmdSettings, CmdQuit,
}

var aliases = map[string]string{
	"r":           CmdRefresh,
	"readall":     CmdReadAll,
	"mark-all":    CmdReadAll,
	"q":           CmdQuit,
	"exit":        CmdQuit,
	"config":      CmdSettings,
	"configure":   CmdSettings,
	"filter-type": CmdType,
}

// Parse splits input into a command and validates its arguments.
func Parse(input string) (Command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name := strings.ToLower(fields[0])
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	cmd := Command{Name: name, Args: fields[1:]}

	switch name {
	case CmdRefresh, CmdReadAll, CmdUnread, CmdClear, CmdStats, CmdHistory, CmdSettings, CmdQuit:
		return cmd, nil

	case CmdTest:
		if len(cmd.Args) > 0 {
			cmd.Args[0] = strings.ToUpper(cmd.Args[0])
		}
		return cmd, nil

	case CmdType:
		if len(cmd.Args) != 1 {
			return Command{}, fmt.Errorf("usage: type <TYPE|all>")
		}
		if !strings.EqualFold(cmd.Args[0], model.FilterAll) {
			cmd.Args[0] = strings.ToUpper(cmd.Args[0])
		} else {
			cmd.Args[0] = model.FilterAll
		}
		return cmd, nil

	case CmdSeverity:
		if len(cmd.Args) != 1 {
			return Command{}, fmt.Errorf("usage: severity <SUCCESS|INFO|WARNING|ERROR|all>")
		}
		if strings.EqualFold(cmd.Args[0], model.FilterAll) {
			cmd.Args[0] = model.FilterAll
			return cmd, nil
		}
		sev := model.Severity(strings.ToUpper(cmd.Args[0]))
		for _, known := range model.Severities {
			if sev == known {
				cmd.Args[0] = string(sev)
				return cmd, nil
			}
		}
		return Command{}, fmt.Errorf("unknown severity %q", cmd.Args[0])

	case CmdSound, CmdAuto:
		if len(cmd.Args) == 0 {
			return cmd, nil
		}
		if _, err := ParseSwitch(cmd.Args[0]); err != nil {
			return Command{}, err
		}
		return cmd, nil

	case CmdInterval:
		if len(cmd.Args) != 1 {
			return Command{}, fmt.Errorf("usage: interval <milliseconds>")
		}
		ms, err := strconv.Atoi(cmd.Args[0])
		if err != nil || ms < 500 {
			return Command{}, fmt.Errorf("interval must be a number of milliseconds >= 500")
		}
		return cmd, nil
	}

	return Command{}, fmt.Errorf("unknown command %q", fields[0])
}

// ParseSwitch reads on/off style arguments.
func ParseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
