package session

// CommandPrefix marks input that is dispatched as a command instead of
// being evaluated.
const CommandPrefix = ":"

// UnknownCommandResult is the result recorded for unrecognised commands.
const UnknownCommandResult = "Unknown command"

// CommandInfo describes a built-in command for help output.
type CommandInfo struct {
	Names       []string
	Description string
}

type commandSpec struct {
	info CommandInfo
	run  func(s *Session)
}

var commandSpecs = []commandSpec{
	{
		info: CommandInfo{Names: []string{":clear", ":c"}, Description: "Clear history and variables"},
		run:  (*Session).clear,
	},
	{
		info: CommandInfo{Names: []string{":help", ":h"}, Description: "Show help"},
		run:  (*Session).openHelp,
	},
	{
		info: CommandInfo{Names: []string{":quit", ":q"}, Description: "Save and exit"},
		run:  (*Session).Quit,
	},
}

// commandTable maps every alias to its handler; matching is exact and
// case-sensitive.
var commandTable = func() map[string]func(*Session) {
	table := make(map[string]func(*Session))
	for _, spec := range commandSpecs {
		for _, name := range spec.info.Names {
			table[name] = spec.run
		}
	}
	return table
}()

// Commands lists the built-in commands in display order.
func Commands() []CommandInfo {
	out := make([]CommandInfo, len(commandSpecs))
	for i, spec := range commandSpecs {
		out[i] = spec.info
	}
	return out
}

// dispatchCommand runs a command line. The evaluator is never consulted.
func (s *Session) dispatchCommand(raw, trimmed string) {
	if run, ok := commandTable[trimmed]; ok {
		s.logger.Debug("command", "name", trimmed)
		run(s)
	} else {
		s.appendEntry(HistoryEntry{
			Expression: raw,
			Result:     UnknownCommandResult,
			IsError:    true,
		})
	}
	s.input = s.input[:0]
}

// clear empties the history and the evaluation context together.
func (s *Session) clear() {
	s.history = nil
	s.selected = -1
	s.vars = make(map[string]any)
}

func (s *Session) openHelp() {
	s.mode = ModeModal
}
