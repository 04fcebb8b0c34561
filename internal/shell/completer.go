package shell

import "github.com/chzyer/readline"

func newCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("gen"),
		readline.PcItem("add"),
		readline.PcItem("load"),
		readline.PcItem("k"),
		readline.PcItem("init",
			readline.PcItem("uniform"),
			readline.PcItem("kmeans++"),
		),
		readline.PcItem("seed"),
		readline.PcItem("start"),
		readline.PcItem("assign"),
		readline.PcItem("update"),
		readline.PcItem("step"),
		readline.PcItem("run"),
		readline.PcItem("play"),
		readline.PcItem("stop"),
		readline.PcItem("reset"),
		readline.PcItem("show"),
		readline.PcItem("history"),
		readline.PcItem("csv"),
		readline.PcItem("log"),
		readline.PcItem("export"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
