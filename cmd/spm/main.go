package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Hussein-Mazeh/SecurePM/auth"
	"github.com/Hussein-Mazeh/SecurePM/internal/config"
	"github.com/Hussein-Mazeh/SecurePM/internal/service"
	"github.com/Hussein-Mazeh/SecurePM/internal/vault"
)

const cliVersion = "1.0.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Println(cliVersion)
	case "signup":
		if err := runSignup(os.Args[2:]); err != nil {
			handleError(err)
		}
	case "session":
		if err := runSession(os.Args[2:]); err != nil {
			handleError(err)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "unexpected error: %v\n", err)
	os.Exit(2)
}

func newService(args []string, name string) (*service.Service, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := config.NewConfig()
	cfg.BindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return nil, userError{msg: "unexpected positional arguments"}
	}

	logger, err := cfg.BuildLogger()
	if err != nil {
		return nil, err
	}

	svc, err := service.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func runSignup(args []string) error {
	svc, err := newService(args, "signup")
	if err != nil {
		return err
	}
	defer svc.Close()

	needed, err := svc.NeedsSignup()
	if err != nil {
		return fmt.Errorf("inspect vault: %w", err)
	}
	if !needed {
		return userError{msg: "master account already exists; run spm session"}
	}

	fmt.Fprint(os.Stderr, "Username: ")
	reader := bufio.NewReader(os.Stdin)
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read username: %w", err)
	}
	username = strings.TrimSpace(username)

	pw, err := promptPassword("Master password: ")
	if err != nil {
		return fmt.Errorf("read master password: %w", err)
	}
	defer zeroBytes(pw)

	confirm, err := promptPassword("Confirm master password: ")
	if err != nil {
		return fmt.Errorf("read confirmation password: %w", err)
	}
	defer zeroBytes(confirm)

	if !bytes.Equal(pw, confirm) {
		return userError{msg: "passwords do not match"}
	}

	opts := auth.DefaultValidateOptions()
	opts.EnableHIBP = true
	if err := auth.ValidateMasterPasswordAdvanced(context.Background(), string(pw), opts); err != nil {
		return userError{msg: err.Error()}
	}

	if err := svc.SignUp(username, string(pw)); err != nil {
		if errors.Is(err, vault.ErrAccountExists) {
			return userError{msg: "master account already exists"}
		}
		return err
	}

	fmt.Printf("master account created for %s; run spm session to log in\n", username)
	return nil
}

func runSession(args []string) error {
	svc, err := newService(args, "session")
	if err != nil {
		return err
	}
	defer svc.Close()

	needed, err := svc.NeedsSignup()
	if err != nil {
		return fmt.Errorf("inspect vault: %w", err)
	}
	if needed {
		return userError{msg: "no master account yet; run spm signup first"}
	}

	fmt.Fprint(os.Stderr, "Username: ")
	reader := bufio.NewReader(os.Stdin)
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read username: %w", err)
	}
	username = strings.TrimSpace(username)

	pw, err := promptPassword("Master password: ")
	if err != nil {
		return fmt.Errorf("read master password: %w", err)
	}

	err = svc.Login(username, string(pw))
	zeroBytes(pw)
	if err != nil {
		if errors.Is(err, vault.ErrAuthenticationFailed) {
			return userError{msg: "invalid credentials"}
		}
		return err
	}
	defer svc.Logout()

	fmt.Println("vault unlocked; type help for commands")
	for {
		fmt.Print("spm> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return nil
		case "help":
			printSessionHelp()
		default:
			handleSessionError(runSessionCommand(svc, reader, fields))
		}
	}
}

func runSessionCommand(svc *service.Service, reader *bufio.Reader, fields []string) error {
	switch fields[0] {
	case "add":
		return cmdAdd(svc, reader, fields[1:])
	case "get":
		return cmdGet(svc, fields[1:])
	case "update":
		return cmdUpdate(svc, reader, fields[1:])
	case "list":
		return cmdList(svc, fields[1:])
	case "fav", "unfav":
		return cmdFavorite(svc, fields)
	case "del":
		return withEntryID(svc, fields[1:], svc.SoftDelete)
	case "restore":
		return withEntryID(svc, fields[1:], svc.Restore)
	case "purge":
		return withEntryID(svc, fields[1:], svc.Purge)
	case "categories":
		return cmdCategories(svc, fields[1:])
	default:
		return userError{msg: fmt.Sprintf("unknown command %q; type help", fields[0])}
	}
}

func cmdAdd(svc *service.Service, reader *bufio.Reader, args []string) error {
	if len(args) < 1 {
		return userError{msg: "add requires a title"}
	}
	title := strings.Join(args, " ")
	if len(title) > 20 {
		return userError{msg: "title must be at most 20 characters"}
	}

	entry := service.EntryFields{Title: title}
	entry.Username = promptLine(reader, "Login username: ")
	entry.Website = promptLine(reader, "Website: ")
	entry.Category = promptLine(reader, "Category (optional): ")
	entry.Notes = promptLine(reader, "Notes (optional): ")

	secret, err := promptPassword("Secret: ")
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	defer zeroBytes(secret)

	id, err := svc.AddEntry(entry, string(secret))
	if err != nil {
		if errors.Is(err, vault.ErrDuplicateTitle) {
			return userError{msg: fmt.Sprintf("an entry titled %q already exists", title)}
		}
		return err
	}

	fmt.Printf("added entry %d (%s)\n", id, title)
	return nil
}

func cmdGet(svc *service.Service, args []string) error {
	if len(args) < 1 {
		return userError{msg: "get requires an id or title"}
	}

	var (
		entry *service.Entry
		err   error
	)
	if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil {
		entry, err = svc.GetEntry(id)
	} else {
		entry, err = svc.GetEntryByTitle(strings.Join(args, " "))
	}
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrNotFound):
			return userError{msg: "entry not found"}
		case errors.Is(err, vault.ErrDecryptionFailed), errors.Is(err, vault.ErrMalformedCiphertext):
			return userError{msg: "stored secret could not be decrypted; the record may be corrupted"}
		}
		return err
	}

	fmt.Printf("[%d] %s\n", entry.ID, entry.Title)
	fmt.Printf("  username: %s\n", entry.Username)
	fmt.Printf("  website:  %s\n", entry.Website)
	if entry.Category != "" {
		fmt.Printf("  category: %s\n", entry.Category)
	}
	if entry.Notes != "" {
		fmt.Printf("  notes:    %s\n", entry.Notes)
	}
	fmt.Printf("  secret:   %s\n", entry.Secret)
	return nil
}

func cmdUpdate(svc *service.Service, reader *bufio.Reader, args []string) error {
	id, err := resolveEntryID(svc, args)
	if err != nil {
		return err
	}

	current, err := svc.GetEntry(id)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return userError{msg: "entry not found"}
		}
		return err
	}

	entry := service.EntryFields{
		Title:    orDefault(promptLine(reader, fmt.Sprintf("Title [%s]: ", current.Title)), current.Title),
		Username: orDefault(promptLine(reader, fmt.Sprintf("Login username [%s]: ", current.Username)), current.Username),
		Website:  orDefault(promptLine(reader, fmt.Sprintf("Website [%s]: ", current.Website)), current.Website),
		Category: orDefault(promptLine(reader, fmt.Sprintf("Category [%s]: ", current.Category)), current.Category),
		Notes:    orDefault(promptLine(reader, "Notes: "), current.Notes),
		Icon:     current.Icon,
		Favorite: current.Favorite,
	}

	secret, err := promptPassword("New secret: ")
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	defer zeroBytes(secret)
	if len(secret) == 0 {
		return userError{msg: "secret cannot be empty"}
	}

	if err := svc.UpdateEntry(id, entry, string(secret)); err != nil {
		if errors.Is(err, vault.ErrDuplicateTitle) {
			return userError{msg: "an entry with that title already exists"}
		}
		return err
	}

	fmt.Printf("updated entry %d\n", id)
	return nil
}

func cmdList(svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var filter service.Filter
	var search string
	fs.BoolVar(&filter.Favorites, "favorites", false, "list favorites only")
	fs.BoolVar(&filter.Trash, "trash", false, "list trashed entries")
	fs.StringVar(&filter.Category, "category", "", "list entries in a category")
	fs.StringVar(&search, "search", "", "match title, username, or website")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid list arguments"}
	}

	items, err := svc.ListEntries(filter, search)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no entries")
		return nil
	}
	for _, it := range items {
		fmt.Printf("%4d  %-20s  %s\n", it.ID, it.Title, it.Username)
	}
	return nil
}

func cmdFavorite(svc *service.Service, fields []string) error {
	id, err := resolveEntryID(svc, fields[1:])
	if err != nil {
		return err
	}
	if err := svc.SetFavorite(id, fields[0] == "fav"); err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return userError{msg: "entry not found"}
		}
		return err
	}
	return nil
}

func cmdCategories(svc *service.Service, args []string) error {
	if len(args) == 0 {
		categories, err := svc.ListCategories()
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			fmt.Println("no categories")
			return nil
		}
		for _, c := range categories {
			fmt.Printf("  %-20s %s\n", c.Name, c.Color)
		}
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return userError{msg: "categories add requires a name"}
		}
		color := ""
		if len(args) > 2 {
			color = args[2]
		}
		if err := svc.AddCategory(args[1], color); err != nil {
			if errors.Is(err, vault.ErrDuplicateCategory) {
				return userError{msg: fmt.Sprintf("category %q already exists", args[1])}
			}
			return err
		}
		return nil
	case "del":
		if len(args) < 2 {
			return userError{msg: "categories del requires a name"}
		}
		return svc.DeleteCategory(args[1])
	default:
		return userError{msg: "usage: categories [add <name> [color] | del <name>]"}
	}
}

func withEntryID(svc *service.Service, args []string, op func(int64) error) error {
	id, err := resolveEntryID(svc, args)
	if err != nil {
		return err
	}
	if err := op(id); err != nil {
		switch {
		case errors.Is(err, vault.ErrNotFound):
			return userError{msg: "entry not found"}
		case errors.Is(err, vault.ErrDuplicateTitle):
			return userError{msg: "a live entry already uses that title; rename or purge it first"}
		}
		return err
	}
	return nil
}

// resolveEntryID accepts either a numeric id or a title.
func resolveEntryID(svc *service.Service, args []string) (int64, error) {
	if len(args) < 1 {
		return 0, userError{msg: "an entry id or title is required"}
	}
	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		return id, nil
	}
	entry, err := svc.GetEntryByTitle(strings.Join(args, " "))
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return 0, userError{msg: "entry not found"}
		}
		return 0, err
	}
	return entry.ID, nil
}

func handleSessionError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		return
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: spm <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version")
	fmt.Fprintln(os.Stderr, "  signup  [--dir <vault-dir>]")
	fmt.Fprintln(os.Stderr, "  session [--dir <vault-dir>]")
}

func printSessionHelp() {
	fmt.Println("Commands:")
	fmt.Println("  add <title>")
	fmt.Println("  get <id|title>")
	fmt.Println("  update <id>")
	fmt.Println("  list [--favorites] [--trash] [--category <name>] [--search <text>]")
	fmt.Println("  fav <id> | unfav <id>")
	fmt.Println("  del <id> | restore <id> | purge <id>")
	fmt.Println("  categories [add <name> [color] | del <name>]")
	fmt.Println("  exit | quit")
}
