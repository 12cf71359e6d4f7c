// Command dictctl administers the suggest dictionary and runs one-shot
// prefix queries.
//
// Usage:
//
//	dictctl [-config path] set-dict <file>
//	dictctl [-config path] flush-dict
//	dictctl [-config path] get-similar <prefix>
//	dictctl [-config path] get-similar-with-defs <prefix>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/suggest"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/logger"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/resilience"
)

const opTimeout = 2 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	client, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to redis: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	dict := suggest.NewDictionary(client, cfg.Suggest.BatchSize)
	engine := suggest.NewEngine(client, cfg.Suggest.MaxResults, nil)
	cache := suggest.NewCache(client, cfg.Suggest.CacheTTL)

	ctx := context.Background()
	switch cmd := flag.Arg(0); cmd {
	case "set-dict":
		if flag.NArg() != 2 {
			usage()
			os.Exit(2)
		}
		err = runSetDict(ctx, dict, cache, flag.Arg(1))
	case "flush-dict":
		err = runFlushDict(ctx, dict, cache)
	case "get-similar":
		if flag.NArg() != 2 {
			usage()
			os.Exit(2)
		}
		err = runGetSimilar(ctx, engine, flag.Arg(1), false)
	case "get-similar-with-defs":
		if flag.NArg() != 2 {
			usage()
			os.Exit(2)
		}
		err = runGetSimilar(ctx, engine, flag.Arg(1), true)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runSetDict(ctx context.Context, dict *suggest.Dictionary, cache *suggest.Cache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dictionary file: %w", err)
	}
	defer f.Close()

	entries, err := suggest.ParseEntries(f)
	if err != nil {
		return err
	}
	return resilience.WithTimeout(ctx, opTimeout, "set-dict", func(ctx context.Context) error {
		loaded, err := dict.Load(ctx, entries)
		if err != nil {
			return err
		}
		if err := cache.Invalidate(ctx); err != nil {
			return err
		}
		fmt.Printf("loaded %d words\n", loaded)
		return nil
	})
}

func runFlushDict(ctx context.Context, dict *suggest.Dictionary, cache *suggest.Cache) error {
	return resilience.WithTimeout(ctx, opTimeout, "flush-dict", func(ctx context.Context) error {
		if err := dict.Flush(ctx); err != nil {
			return err
		}
		if err := cache.Invalidate(ctx); err != nil {
			return err
		}
		fmt.Println("dictionary flushed")
		return nil
	})
}

func runGetSimilar(ctx context.Context, engine *suggest.Engine, prefix string, withDefs bool) error {
	return resilience.WithTimeout(ctx, opTimeout, "get-similar", func(ctx context.Context) error {
		words, err := engine.Suggest(ctx, prefix, withDefs)
		if err != nil {
			return err
		}
		for _, w := range words {
			if withDefs {
				fmt.Printf("%s\t%s\n", w.Word, w.Definition)
			} else {
				fmt.Println(w.Word)
			}
		}
		return nil
	})
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: dictctl [-config path] <command>

commands:
  set-dict <file>                bulk-load "word<TAB>definition" lines
  flush-dict                     drop the dictionary and definitions
  get-similar <prefix>           print words starting with prefix
  get-similar-with-defs <prefix> print words with their definitions`)
}
