package catalog

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Rule names
const (
	RuleUnwrapOptional     = "unwrap-optional"
	RuleMutationBlock      = "mutation-block"
	RuleMutationExpression = "mutation-expression"
)

var (
	identRE       = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	dottedIdentRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)
)

// ⚙️ Options name the target language vocabulary the rules are built from
type Options struct {
	MutationCall     string   // state-mutation invocation, e.g. setState
	LivenessFlag     string   // liveness flag, e.g. mounted or context.mounted
	OptionalAccessor string   // optional-returning accessor, e.g. data
	FailureType      string   // type thrown when an optional is absent
	FailureMessage   string   // message carried by the thrown failure
	IndentUnit       string   // one nesting level
	Disable          []string // rule names to leave out
}

// DefaultOptions returns the Flutter/Firestore vocabulary.
func DefaultOptions() Options {
	return Options{
		MutationCall:     "setState",
		LivenessFlag:     "mounted",
		OptionalAccessor: "data",
		FailureType:      "Exception",
		FailureMessage:   "failed to retrieve data",
		IndentUnit:       "  ",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MutationCall == "" {
		o.MutationCall = def.MutationCall
	}
	if o.LivenessFlag == "" {
		o.LivenessFlag = def.LivenessFlag
	}
	if o.OptionalAccessor == "" {
		o.OptionalAccessor = def.OptionalAccessor
	}
	if o.FailureType == "" {
		o.FailureType = def.FailureType
	}
	if o.FailureMessage == "" {
		o.FailureMessage = def.FailureMessage
	}
	if o.IndentUnit == "" {
		o.IndentUnit = def.IndentUnit
	}
	return o
}

// 🔍 Validate checks that every name can be spliced into code and patterns
func (o Options) Validate() error {
	for field, value := range map[string]string{
		"mutation_call":     o.MutationCall,
		"optional_accessor": o.OptionalAccessor,
		"failure_type":      o.FailureType,
	} {
		if !identRE.MatchString(value) {
			return errors.Errorf("%s: %q is not an identifier", field, value)
		}
	}
	if !dottedIdentRE.MatchString(o.LivenessFlag) {
		return errors.Errorf("liveness_flag: %q is not an identifier", o.LivenessFlag)
	}
	if strings.ContainsAny(o.FailureMessage, "\r\n") {
		return errors.Errorf("failure_message: must be a single line")
	}
	if strings.Trim(o.IndentUnit, " \t") != "" {
		return errors.Errorf("indent_unit: must be spaces or tabs")
	}
	return nil
}

// GuardMarkers returns the affirmative and negative liveness checks.
func (o Options) GuardMarkers() []string {
	return []string{
		"if (" + o.LivenessFlag + ")",
		"if (!" + o.LivenessFlag + ")",
	}
}

var dartStringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `$`, `\$`)

func quoteDart(s string) string {
	return "'" + dartStringEscaper.Replace(s) + "'"
}
