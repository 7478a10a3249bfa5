package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/httputil"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/source"
	"github.com/matzehuels/narrative/pkg/source/mongo"
	"github.com/matzehuels/narrative/pkg/source/remote"
	"github.com/matzehuels/narrative/pkg/source/sqlite"
)

// remoteTTL is how long downloaded dumps are reused.
const remoteTTL = time.Hour

// sourceFlags selects where items are read from. Exactly one of input,
// url, sqlite and mongo.URI must be set, either by flag or in the [source]
// table of the config file:
//
//	[source]
//	sqlite = "posts.db"
//	stop_words = ["rt", "via"]
type sourceFlags struct {
	Input     string       `toml:"input"`
	URL       string       `toml:"url"`
	SQLite    string       `toml:"sqlite"`
	Mongo     mongo.Config `toml:"mongo"`
	StopWords []string     `toml:"stop_words"`
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Input, "input", "i", "", "JSON or JSON Lines file of records")
	cmd.Flags().StringVar(&f.URL, "url", "", "HTTP(S) URL of a JSON or JSON Lines dump")
	cmd.Flags().StringVar(&f.SQLite, "sqlite", "", "SQLite database written by import")
	cmd.Flags().StringVar(&f.Mongo.URI, "mongo-uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&f.Mongo.Database, "mongo-db", "", "MongoDB database")
	cmd.Flags().StringVar(&f.Mongo.Collection, "mongo-collection", "", "MongoDB collection")
	cmd.Flags().StringSliceVar(&f.StopWords, "stop-words", nil, "extra words to ignore when comparing texts")
}

// merge fills unset fields from the config file.
func (f sourceFlags) merge(file sourceFlags) sourceFlags {
	if f.count() == 0 {
		f.Input, f.URL, f.SQLite = file.Input, file.URL, file.SQLite
		f.Mongo.URI = file.Mongo.URI
	}
	if f.Mongo.Database == "" {
		f.Mongo.Database = file.Mongo.Database
	}
	if f.Mongo.Collection == "" {
		f.Mongo.Collection = file.Mongo.Collection
	}
	if f.Mongo.SortField == "" {
		f.Mongo.SortField = file.Mongo.SortField
	}
	if len(f.StopWords) == 0 {
		f.StopWords = file.StopWords
	}
	return f
}

func (f sourceFlags) count() int {
	n := 0
	for _, set := range []bool{f.Input != "", f.URL != "", f.SQLite != "", f.Mongo.URI != ""} {
		if set {
			n++
		}
	}
	return n
}

// sourceConfig reads the [source] table of the config file.
func (c *CLI) sourceConfig() (sourceFlags, error) {
	if c.configPath == "" {
		return sourceFlags{}, nil
	}
	var file struct {
		Source sourceFlags `toml:"source"`
	}
	if _, err := toml.DecodeFile(c.configPath, &file); err != nil {
		return sourceFlags{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", c.configPath)
	}
	return file.Source, nil
}

// openSource opens the selected source. The returned function releases it.
func openSource(ctx context.Context, f sourceFlags) (source.Source, func(), error) {
	switch f.count() {
	case 0:
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "no item source: use --input, --url, --sqlite or --mongo-uri")
	case 1:
	default:
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "use only one of --input, --url, --sqlite and --mongo-uri")
	}

	switch {
	case f.Input != "":
		return source.File{Path: f.Input}, func() {}, nil
	case f.URL != "":
		src, err := openRemote(f.URL)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	case f.SQLite != "":
		store, err := sqlite.Open(f.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		src, err := mongo.Open(ctx, f.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close(context.Background()) }, nil
	}
}

// openRemote returns a source for url whose downloads are cached next to
// the result cache.
func openRemote(url string) (*remote.Source, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	cache, err := httputil.NewCache(filepath.Join(dir, downloadsDir), remoteTTL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "open download cache")
	}
	return remote.New(url, cache)
}

// loadCorpus reads the items of the selected source.
func (c *CLI) loadCorpus(ctx context.Context, f sourceFlags) (*item.Corpus, error) {
	file, err := c.sourceConfig()
	if err != nil {
		return nil, err
	}
	f = f.merge(file)

	src, release, err := openSource(ctx, f)
	if err != nil {
		return nil, err
	}
	defer release()

	prog := newProgress(loggerFromContext(ctx))
	corpus, err := source.LoadCorpus(ctx, src, f.StopWords...)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d items from %s", corpus.Len(), describeSource(f)))
	return corpus, nil
}

func describeSource(f sourceFlags) string {
	switch {
	case f.Input != "":
		return f.Input
	case f.URL != "":
		return f.URL
	case f.SQLite != "":
		return f.SQLite
	}
	return fmt.Sprintf("mongo %s.%s", f.Mongo.Database, f.Mongo.Collection)
}
