package cmd

import (
	"flag"

	"github.com/etnz/opcoes/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the global flags and every command registered in c for shell completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors("", flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[cmd.Name()] = &complete.Command{Flags: flagPredictors(cmd.Name(), fs)}
	})
	if topic, ok := root.Sub["topic"]; ok {
		if topics, err := docs.Names(); err == nil {
			topic.Args = predict.Set(topics)
		}
	}
	return root
}

func flagPredictors(command string, fs *flag.FlagSet) map[string]complete.Predictor {
	res := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) { res[f.Name] = predictor(command, f) })
	return res
}

func predictor(command string, f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch f.Name {
	case "config":
		return predict.Files("*.toml")
	case "type":
		if command == "add-goal" {
			return predict.Set{"monthly", "annual"}
		}
		return predict.Set{"call", "put"}
	case "op":
		return predict.Set{"buy", "sell"}
	case "instrument":
		return predict.Set{"tesouro_selic", "caixa"}
	case "to-driver":
		return predict.Set{"jsonl", "sqlite", "postgres"}
	case "period":
		return predict.Set{"month", "year"}
	default:
		return predict.Something
	}
}
