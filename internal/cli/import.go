package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/narrative/pkg/errors"
	nio "github.com/matzehuels/narrative/pkg/io"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/source/mongo"
	"github.com/matzehuels/narrative/pkg/source/sqlite"
)

// importOpts holds the command-line flags for the import command.
type importOpts struct {
	db      string
	mongo   mongo.Config
	replace bool
}

// importCommand creates the import command, which copies records from a
// JSON file into a SQLite store or a MongoDB collection.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import records from a JSON file into SQLite or MongoDB",
		Example: `  narrative import posts.json --db posts.db
  narrative import posts.jsonl --mongo-uri mongodb://localhost:27017 --mongo-db news --mongo-collection posts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.db == "") == (opts.mongo.URI == "") {
				return errs.New(errs.ErrCodeInvalidInput, "use exactly one of --db and --mongo-uri")
			}
			return c.runImport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite database to write")
	cmd.Flags().StringVar(&opts.mongo.URI, "mongo-uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&opts.mongo.Database, "mongo-db", "", "MongoDB database")
	cmd.Flags().StringVar(&opts.mongo.Collection, "mongo-collection", "", "MongoDB collection")
	cmd.Flags().BoolVar(&opts.replace, "replace", false, "clear the SQLite store before importing")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, path string, opts *importOpts) error {
	prog := newProgress(c.Logger)
	records, err := nio.ImportRecords(path)
	if err != nil {
		return err
	}
	// Reject bad timestamps before anything is written.
	if _, err := item.FromRecords(records); err != nil {
		return err
	}

	var n int
	var target string
	if opts.db != "" {
		n, err = importSQLite(ctx, opts.db, records, opts.replace)
		target = opts.db
	} else {
		n, err = importMongo(ctx, opts.mongo, records)
		target = fmt.Sprintf("mongo %s.%s", opts.mongo.Database, opts.mongo.Collection)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d records", n))

	printSuccess("Imported %s records into %s", StyleNumber.Render(fmt.Sprint(n)), target)
	if opts.db != "" {
		printNextStep("Build threads", fmt.Sprintf("%s threads --sqlite %s --anchor 0", appName, opts.db))
	}
	return nil
}

func importSQLite(ctx context.Context, path string, records []item.Record, replace bool) (int, error) {
	store, err := sqlite.Open(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if replace {
		if err := store.Clear(ctx); err != nil {
			return 0, err
		}
	} else if existing, err := store.Count(ctx); err == nil && existing > 0 {
		printWarning("%s already holds %d records; new records are appended", path, existing)
	}
	return store.Save(ctx, records)
}

func importMongo(ctx context.Context, cfg mongo.Config, records []item.Record) (int, error) {
	src, err := mongo.Open(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer src.Close(context.Background())
	return src.Save(ctx, records)
}
