package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/hiddengems/internal/adapters/http/site"
	"github.com/okian/hiddengems/internal/adapters/source"
	"github.com/okian/hiddengems/internal/domain/collate"
	"github.com/okian/hiddengems/internal/gemlint"
	"github.com/pterm/pterm"
	"golang.org/x/text/language"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		data    = flag.String("data", "", "Dataset URL or file path (default: the embedded sample)")
		locale  = flag.String("locale", "ro", "Collation locale for option lists")
		timeout = flag.Duration("timeout", defaultTimeout, "Fetch timeout")
		strict  = flag.Bool("strict", false, "Exit non-zero when any feature would be dropped")
	)
	flag.Parse()

	tag, err := language.Parse(*locale)
	if err != nil {
		pterm.Error.Printfln("invalid locale %q: %v", *locale, err)
		os.Exit(2)
	}

	var src source.Source = source.NewFS(site.Static(), site.DatasetPath)
	if *data != "" {
		src = source.New(*data, *timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := gemlint.Check(ctx, src, collate.NewSorter(tag))
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	if err := report.Render(os.Stdout); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	if *strict && len(report.Dropped) > 0 {
		os.Exit(1)
	}
}
