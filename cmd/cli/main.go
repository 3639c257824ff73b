package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"animehub/internal/logging"
	"animehub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	logging.Init(logging.Config{Level: "info", Format: "console"})

	global := flag.NewFlagSet("animehub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		logging.Fatal().Err(err).Msg("parse flags")
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	c := &client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   strings.TrimRight(*baseURL, "/"),
		tokenPath: *tokenPath,
	}

	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	var err error
	switch cmd {
	case "register":
		err = c.register(ctx, args[1:])
	case "login":
		err = c.login(ctx, args[1:])
	case "logout":
		err = clearToken(c.tokenPath)
		if err == nil {
			fmt.Println("logged out")
		}
	case "anime":
		err = handleAnime(ctx, c, sub, rest)
	case "category":
		err = handleCategory(ctx, c, sub, rest)
	case "events":
		err = handleEvents(c, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg(cmd + " failed")
	}
}

func credentialFlags(name string, args []string) (string, string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)
	return *username, *password
}

func (c *client) register(ctx context.Context, args []string) error {
	username, password := credentialFlags("register", args)
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/register", false, credentials{username, password}, &resp); err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func (c *client) login(ctx context.Context, args []string) error {
	username, password := credentialFlags("login", args)
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", false, credentials{username, password}, &resp); err != nil {
		return err
	}
	if err := saveToken(c.tokenPath, resp.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Printf("logged in, token valid until %s\n", resp.ExpiresAt)
	return nil
}

func handleAnime(ctx context.Context, c *client, sub string, args []string) error {
	switch sub {
	case "list":
		var resp animeListResponse
		if err := c.do(ctx, http.MethodGet, "/anime", true, nil, &resp); err != nil {
			return err
		}
		for _, a := range resp.Animes {
			printAnime(a)
		}
		return nil

	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		var a models.Anime
		if err := c.do(ctx, http.MethodGet, "/anime/"+id, true, nil, &a); err != nil {
			return err
		}
		printJSON(a)
		return nil

	case "create":
		fs := flag.NewFlagSet("anime create", flag.ExitOnError)
		title := fs.String("title", "", "title")
		rating := fs.Float64("rating", 0, "rating")
		reviews := fs.Int("reviews", 0, "number of reviews")
		seasons := fs.Int("seasons", 1, "number of seasons")
		typ := fs.String("type", "TV", "type (TV, Movie, OVA...)")
		poster := fs.String("poster", "", "poster URL")
		cats := fs.String("categories", "", "comma-separated category names")
		_ = fs.Parse(args)

		body := animeBody{
			Title:      title,
			Rating:     rating,
			Reviews:    reviews,
			Seasons:    seasons,
			Type:       typ,
			Poster:     poster,
			Categories: splitNames(*cats),
		}
		var a models.Anime
		if err := c.do(ctx, http.MethodPost, "/anime", true, body, &a); err != nil {
			return err
		}
		printAnime(a)
		return nil

	case "patch":
		if len(args) == 0 {
			return errors.New("usage: animehub anime patch <id> [flags]")
		}
		id := args[0]
		fs := flag.NewFlagSet("anime patch", flag.ExitOnError)
		title := fs.String("title", "", "title")
		rating := fs.Float64("rating", 0, "rating")
		reviews := fs.Int("reviews", 0, "number of reviews")
		seasons := fs.Int("seasons", 0, "number of seasons")
		typ := fs.String("type", "", "type")
		poster := fs.String("poster", "", "poster URL")
		cats := fs.String("categories", "", "comma-separated category names, replaces the set")
		_ = fs.Parse(args[1:])

		// only flags given on the command line are sent
		var body animeBody
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				body.Title = title
			case "rating":
				body.Rating = rating
			case "reviews":
				body.Reviews = reviews
			case "seasons":
				body.Seasons = seasons
			case "type":
				body.Type = typ
			case "poster":
				body.Poster = poster
			case "categories":
				body.Categories = splitNames(*cats)
			}
		})
		var a models.Anime
		if err := c.do(ctx, http.MethodPatch, "/anime/"+id, true, body, &a); err != nil {
			return err
		}
		printAnime(a)
		return nil

	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		var resp messageResponse
		if err := c.do(ctx, http.MethodDelete, "/anime/"+id, true, nil, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil
	}
	return errors.New("usage: animehub anime <list|get|create|patch|delete>")
}

func handleCategory(ctx context.Context, c *client, sub string, args []string) error {
	switch sub {
	case "list":
		var resp categoryListResponse
		if err := c.do(ctx, http.MethodGet, "/category", true, nil, &resp); err != nil {
			return err
		}
		for _, cat := range resp.Categories {
			fmt.Printf("%4d  %s\n", cat.ID, cat.Name)
		}
		return nil

	case "create":
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			return errors.New("usage: animehub category create <name>")
		}
		var cat models.Category
		if err := c.do(ctx, http.MethodPost, "/category", true, map[string]string{"name": args[0]}, &cat); err != nil {
			return err
		}
		fmt.Printf("%4d  %s\n", cat.ID, cat.Name)
		return nil

	case "rename":
		if len(args) < 2 {
			return errors.New("usage: animehub category rename <id> <name>")
		}
		id, err := idArg(args[:1])
		if err != nil {
			return err
		}
		var cat models.Category
		if err := c.do(ctx, http.MethodPut, "/category/"+id, true, map[string]string{"name": args[1]}, &cat); err != nil {
			return err
		}
		fmt.Printf("%4d  %s\n", cat.ID, cat.Name)
		return nil

	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		var resp messageResponse
		if err := c.do(ctx, http.MethodDelete, "/category/"+id, true, nil, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil
	}
	return errors.New("usage: animehub category <list|create|rename|delete>")
}

func handleEvents(c *client, sub string, args []string) error {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("events listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP event stream address")
		_ = fs.Parse(args)
		for {
			if err := listenTCP(*addr, os.Stdout); err != nil {
				logging.Warn().Err(err).Msg("event stream disconnected")
			}
			time.Sleep(time.Second)
		}
	case "watch":
		u, err := websocketURL(c.baseURL, "/ws")
		if err != nil {
			return err
		}
		return watchWebSocket(u, os.Stdout)
	}
	return errors.New("usage: animehub events <listen|watch>")
}

func idArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("id argument is required")
	}
	if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
		return "", fmt.Errorf("invalid id %q", args[0])
	}
	return args[0], nil
}

func splitNames(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printUsage() {
	fmt.Println("animehub [-api URL] [-token PATH] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  register -username U -password P")
	fmt.Println("  login -username U -password P")
	fmt.Println("  logout")
	fmt.Println("  anime list|get|create|patch|delete")
	fmt.Println("  category list|create|rename|delete")
	fmt.Println("  events listen|watch")
}
