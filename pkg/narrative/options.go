package narrative

import (
	"io"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/similarity"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTextSimilarityThreshold is the minimum textual overlap for a
	// pair to be scored at all.
	DefaultTextSimilarityThreshold = similarity.DefaultTextThreshold

	// DefaultOverallSimilarityThreshold is the minimum score against the
	// anchor for an item to join the similarity set.
	DefaultOverallSimilarityThreshold = similarity.DefaultOverallThreshold

	// DefaultDAGEdgeThreshold is the minimum pairwise score for two set
	// members to be connected. It is deliberately lower than the set
	// threshold so that members reached through the anchor can still chain.
	DefaultDAGEdgeThreshold = 0.25
)

// =============================================================================
// Options
// =============================================================================

// Options configures an [Engine]. A zero threshold selects its default
// unless it was marked with [Options.KeepZero]. [LoadOptions] and
// [ParseOptions] mark every threshold the file sets to 0, so
// "text_similarity_threshold = 0" disables the text gate.
// Options can be decoded from TOML (see [LoadOptions]) or JSON.
type Options struct {
	TextSimilarityThreshold    float64 `toml:"text_similarity_threshold" json:"text_similarity_threshold"`
	OverallSimilarityThreshold float64 `toml:"overall_similarity_threshold" json:"overall_similarity_threshold"`
	DAGEdgeThreshold           float64 `toml:"dag_edge_threshold" json:"dag_edge_threshold"`

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-" json:"-"`

	// zero has bit i set when threshold i is explicitly zero.
	zero uint8
}

type threshold struct {
	key   string
	value *float64
	def   float64
}

// thresholds lists the thresholds by their configuration key.
func (o *Options) thresholds() []threshold {
	return []threshold{
		{"text_similarity_threshold", &o.TextSimilarityThreshold, DefaultTextSimilarityThreshold},
		{"overall_similarity_threshold", &o.OverallSimilarityThreshold, DefaultOverallSimilarityThreshold},
		{"dag_edge_threshold", &o.DAGEdgeThreshold, DefaultDAGEdgeThreshold},
	}
}

// KeepZero marks the thresholds named by their configuration keys so that
// a zero value is kept by [Options.SetDefaults]. Unknown keys are ignored.
func (o *Options) KeepZero(keys ...string) {
	for i, th := range o.thresholds() {
		if slices.Contains(keys, th.key) {
			o.zero |= 1 << i
		}
	}
}

// SetDefaults replaces zero values by their defaults.
func (o *Options) SetDefaults() {
	for i, th := range o.thresholds() {
		if *th.value == 0 && o.zero&(1<<i) == 0 {
			*th.value = th.def
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks that every threshold lies in [0, 1].
func (o *Options) Validate() error {
	for _, th := range o.thresholds() {
		if err := errs.ValidateThreshold(th.key, *th.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// configFile is the layout of the engine section of a configuration file:
//
//	[engine]
//	text_similarity_threshold = 0.1
//	overall_similarity_threshold = 0.3
//	dag_edge_threshold = 0.25
type configFile struct {
	Engine Options `toml:"engine"`
}

// LoadOptions reads the [engine] table of a TOML configuration file. Other
// tables are ignored. Missing values take their defaults.
func LoadOptions(path string) (Options, error) {
	if err := errs.ValidatePath(path); err != nil {
		return Options{}, err
	}
	var f configFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return f.options(md)
}

// ParseOptions is like [LoadOptions] for configuration held in memory.
func ParseOptions(data string) (Options, error) {
	var f configFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse configuration")
	}
	return f.options(md)
}

// options keeps the thresholds the file sets to 0, then applies defaults.
func (f *configFile) options(md toml.MetaData) (Options, error) {
	o := f.Engine
	for _, th := range o.thresholds() {
		if *th.value == 0 && md.IsDefined("engine", th.key) {
			o.KeepZero(th.key)
		}
	}
	if err := o.ValidateAndSetDefaults(); err != nil {
		return Options{}, err
	}
	return o, nil
}
