package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"stacks/internal/config"
	"stacks/internal/covers"
	"stacks/internal/datastore"
	"stacks/internal/export"
	"stacks/internal/flow"
	"stacks/internal/library"
	"stacks/internal/openlibrary"
	"stacks/internal/tui"
)

// Swappable seams for tests
var (
	confirmAddition                 = tui.ConfirmAddition
	lookupBook      flow.LookupFunc = openlibrary.Lookup
	stdout          io.Writer       = os.Stdout
)

// CLI represents the complete command structure for the stacks application
type CLI struct {
	// Global flags
	Library   string `help:"Path to the collection CSV file"`
	CoversDir string `help:"Directory for cached cover images"`
	LogLevel  string `help:"Log level (debug, info, warn, error)" default:"info"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Add    AddCmd    `cmd:"" help:"Look up a book by ISBN and add it to the collection"`
	List   ListCmd   `cmd:"" help:"List the collection"`
	Search SearchCmd `cmd:"" help:"Search the collection by title, author, ISBN or publisher"`
	Show       ShowCmd       `cmd:"" help:"Show one book in detail"`
	ToggleRead ToggleReadCmd `cmd:"" name:"toggle-read" help:"Mark a book as read or unread"`
	Export     ExportCmd     `cmd:"" help:"Export the collection to other formats"`
}

// AddCmd represents the add command
type AddCmd struct {
	ISBN string `arg:"" help:"ISBN of the book to add (hyphens and spaces are fine)"`
	Yes  bool   `short:"y" help:"Add without interactive confirmation"`
}

// ListCmd represents the list command
type ListCmd struct {
	Sort   string `help:"Listing order" enum:"added,title" default:"added"`
	Unread bool   `help:"Only list unread books"`
}

// SearchCmd represents the search command
type SearchCmd struct {
	Term string `arg:"" help:"Search term"`
}

// ShowCmd represents the show command
type ShowCmd struct {
	ISBN string `arg:"" help:"ISBN of the book to show"`
}

// ToggleReadCmd represents the toggle-read command
type ToggleReadCmd struct {
	ISBN   string `arg:"" help:"ISBN of the book to update"`
	Unread bool   `help:"Mark as unread instead of read"`
}

// ExportCmd represents the export command and its subcommands
type ExportCmd struct {
	Markdown ExportMarkdownCmd `cmd:"" help:"Write one markdown note per book"`
	JSON     ExportJSONCmd     `cmd:"" help:"Write the collection as a JSON file"`
	SQLite   ExportSQLiteCmd   `cmd:"" help:"Write the collection into a SQLite database"`
}

// ExportMarkdownCmd writes markdown notes
type ExportMarkdownCmd struct {
	Output    string `short:"o" help:"Directory for markdown notes" default:"notes"`
	Overwrite bool   `help:"Overwrite existing notes"`
}

// ExportJSONCmd writes a JSON dump
type ExportJSONCmd struct {
	Output    string `short:"o" help:"Path of the JSON file" default:"books.json"`
	Overwrite bool   `help:"Overwrite an existing file"`
}

// ExportSQLiteCmd fills a SQLite database
type ExportSQLiteCmd struct {
	DBFile string `help:"Path of the SQLite database file" default:"./stacks.db"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("stacks"),
		kong.Description("A personal book collection manager backed by OpenLibrary."),
		kong.UsageOnError(),
	)

	initLogging(cli.LogLevel)
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("library.file", "library_collection.csv")
	viper.SetDefault("library.coversdir", "covers")
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
		// No config file is fine, defaults and flags cover everything
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.Library != "" {
		config.SetLibraryFile(cli.Library)
	}
	if cli.CoversDir != "" {
		config.SetCoversDir(cli.CoversDir)
	}

	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

func initLogging(level string) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: parseLogLevel(level),
	})

	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore loads the collection from the configured file.
func openStore() (*library.Store, error) {
	store := library.NewStore(config.LibraryFile)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func newFlow(store *library.Store, autoConfirm bool) *flow.Flow {
	coverCache := covers.New(config.CoversDir)

	confirmer := flow.Confirmer(flow.ConfirmFunc(confirmAddition))
	if autoConfirm {
		confirmer = flow.AutoConfirm
	}

	return flow.New(store, lookupBook, coverCache.Ensure, confirmer)
}

// Run methods for each command

func (a *AddCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	f := newFlow(store, a.Yes || config.AutoConfirm)

	book, err := f.Add(context.Background(), a.ISBN)
	if err != nil {
		return describeAddError(err, a.ISBN)
	}

	fmt.Fprintf(stdout, "Added %q (%s)\n", book.Title, book.ISBN)
	return nil
}

// describeAddError rewraps flow failures with user-facing guidance.
func describeAddError(err error, isbn string) error {
	switch {
	case errors.Is(err, library.ErrInvalidISBN):
		return fmt.Errorf("%q is not a valid ISBN: use digits, hyphens and spaces only", isbn)
	case errors.Is(err, flow.ErrDeclined):
		return errors.New("addition cancelled")
	case errors.Is(err, openlibrary.ErrNotFound):
		return fmt.Errorf("OpenLibrary has no record for ISBN %s", isbn)
	case openlibrary.IsTransient(err):
		return fmt.Errorf("lookup failed, try again shortly: %w", err)
	default:
		return err
	}
}

func (l *ListCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	books := store.All()
	if l.Sort == "title" {
		books = store.SortedByTitle()
	}
	if l.Unread {
		filtered := books[:0:0]
		for _, b := range books {
			if !b.Read {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	renderBooks(stdout, books)
	return nil
}

func (s *SearchCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	matches := store.Search(s.Term)
	if len(matches) == 0 {
		fmt.Fprintf(stdout, "No books matching %q\n", s.Term)
		return nil
	}

	renderBooks(stdout, matches)
	return nil
}

func (s *ShowCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	book, err := store.Get(s.ISBN)
	if err != nil {
		return err
	}

	coverCache := covers.New(config.CoversDir)
	coverPath := book.CoverPath
	if coverPath == "" {
		// Cover files are keyed by ISBN, so one may exist from an
		// earlier run even though the CSV does not record it
		if candidate := coverCache.PathFor(book.ISBN); fileExists(candidate) {
			coverPath = candidate
		}
	}

	fmt.Fprintf(stdout, "Title:      %s\n", orUnknown(book.Title))
	fmt.Fprintf(stdout, "Author:     %s\n", orUnknown(book.Author))
	fmt.Fprintf(stdout, "Publisher:  %s\n", orUnknown(book.Publisher))
	fmt.Fprintf(stdout, "Published:  %s\n", orUnknown(book.PublishedDate))
	fmt.Fprintf(stdout, "ISBN:       %s\n", book.ISBN)
	fmt.Fprintf(stdout, "Added:      %s\n", book.DateAdded)
	fmt.Fprintf(stdout, "Read:       %s\n", readLabel(book.Read))
	if coverPath != "" {
		fmt.Fprintf(stdout, "Cover:      %s\n", coverPath)
	}
	return nil
}

func (m *ToggleReadCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	f := newFlow(store, true)
	book, err := f.ToggleRead(m.ISBN, !m.Unread)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Marked %q as %s\n", book.Title, readLabel(book.Read))
	return nil
}

func (e *ExportMarkdownCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	written, err := export.Markdown(store.All(), e.Output, e.Overwrite)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %d notes to %s\n", written, e.Output)
	return nil
}

func (e *ExportJSONCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	wrote, err := export.JSON(store.All(), e.Output, e.Overwrite)
	if err != nil {
		return err
	}
	if !wrote {
		fmt.Fprintf(stdout, "%s already exists, use --overwrite to replace it\n", e.Output)
		return nil
	}

	fmt.Fprintf(stdout, "Wrote %d books to %s\n", store.Len(), e.Output)
	return nil
}

func (e *ExportSQLiteCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	db := datastore.NewSQLiteStore(e.DBFile)
	if err := db.Connect(); err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.ExportBooks(store.All()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Exported %d books to %s\n", store.Len(), e.DBFile)
	return nil
}

func renderBooks(w io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books in collection")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ISBN\tTITLE\tAUTHOR\tREAD\tADDED")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.ISBN, b.Title, b.Author, readLabel(b.Read), b.DateAdded)
	}
	_ = tw.Flush()
}

func readLabel(read bool) string {
	if read {
		return "read"
	}
	return "unread"
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
