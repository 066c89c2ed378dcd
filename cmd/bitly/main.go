package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akarasev/go-bitly/api"
	"github.com/akarasev/go-bitly/api/bitlinks"
	"github.com/akarasev/go-bitly/api/users"
	"github.com/akarasev/go-bitly/config"
)

const usage = `usage: bitly [-t token] [-u base-url] [-v] <command> [args]

commands:
  shorten <long-url>     shorten a URL into a bitlink
  expand <bitlink-id>    resolve a bitlink back into its long URL
  fetch <bitlink-id>     show a bitlink's full record
  list [group-guid]      list a group's bitlinks (default group when omitted)
`

func main() {
	// Missing .env is fine, the token may come from the environment proper
	_ = godotenv.Load()

	cfg, err := config.Configure()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("failed to parse log level")
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	client, err := newClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure API client")
	}

	if err := run(context.Background(), client, args); err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("command failed")
	}
}

func newClient(cfg *config.Config) (*api.Client, error) {
	opts := []api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(log.Logger),
	}
	if cfg.APIBaseURL != nil {
		opts = append(opts, api.WithBaseURL(cfg.APIBaseURL.String()))
	}
	return api.New(cfg.AccessToken, opts...)
}

func run(ctx context.Context, client *api.Client, args []string) error {
	switch command := args[0]; command {
	case "shorten":
		if len(args) < 2 {
			return fmt.Errorf("shorten requires a URL argument")
		}
		link, err := bitlinks.Shorten(ctx, client, bitlinks.ShortenParams{LongURL: args[1]})
		if err != nil {
			return err
		}
		fmt.Println(link.Link)
		return nil
	case "expand":
		if len(args) < 2 {
			return fmt.Errorf("expand requires a bitlink id argument")
		}
		link, err := bitlinks.Expand(ctx, client, args[1])
		if err != nil {
			return err
		}
		fmt.Println(link.LongURL)
		return nil
	case "fetch":
		if len(args) < 2 {
			return fmt.Errorf("fetch requires a bitlink id argument")
		}
		link, err := bitlinks.Fetch(ctx, client, args[1])
		if err != nil {
			return err
		}
		printBitlink(link)
		return nil
	case "list":
		groupGUID := ""
		if len(args) > 1 {
			groupGUID = args[1]
		}
		return listBitlinks(ctx, client, groupGUID)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func listBitlinks(ctx context.Context, client *api.Client, groupGUID string) error {
	if groupGUID == "" {
		user, err := users.Fetch(ctx, client)
		if err != nil {
			return fmt.Errorf("unable to resolve the default group due to %w", err)
		}
		groupGUID = user.DefaultGroupGUID
	}
	page, err := bitlinks.List(ctx, client, groupGUID)
	if err != nil {
		return err
	}
	for page != nil {
		for _, link := range page.Links {
			fmt.Printf("%s\t%s\n", link.Link, link.LongURL)
		}
		page, err = page.NextPage(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func printBitlink(link *bitlinks.Bitlink) {
	fmt.Printf("id:        %s\n", link.ID)
	fmt.Printf("link:      %s\n", link.Link)
	fmt.Printf("long url:  %s\n", link.LongURL)
	if link.Title != "" {
		fmt.Printf("title:     %s\n", link.Title)
	}
	if !link.CreatedAt.IsZero() {
		fmt.Printf("created:   %s\n", link.CreatedAt.Format(api.TimestampLayout))
	}
	if len(link.Tags) > 0 {
		fmt.Printf("tags:      %s\n", strings.Join(link.Tags, ", "))
	}
	if link.GroupGUID != "" {
		fmt.Printf("group:     %s\n", link.GroupGUID)
	}
	fmt.Printf("archived:  %t\n", link.Archived)
}
