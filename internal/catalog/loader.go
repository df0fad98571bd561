package catalog

import (
	"fmt"
	"os"
	"regexp"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// The modifier catalog is authored in CUE and compiled into Entry values at
// startup. A catalog file declares entries under a top-level "modifier"
// struct; declaration order is preserved and becomes the match order:
//
//	modifier: {
//		overclock: {
//			name:      "Overclock"
//			scope:     "squad"
//			magnitude: 120.0
//			duration:  10.0
//			match: {include: "(?i)overclock"}
//		}
//		fieldkit: {
//			scope:     "pool"
//			magnitude: {base: 30.0, per_level: 15.0}
//			duration:  9000.0
//			grant:     true
//		}
//	}

// CompileError reports a structural problem in a catalog entry, with the
// CUE source position when available.
type CompileError struct {
	Entry   string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: modifier %q field %q: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Entry, e.Field, e.Message)
	}
	return fmt.Sprintf("modifier %q field %q: %s", e.Entry, e.Field, e.Message)
}

// LoadCatalog loads a catalog from a CUE file or directory of CUE files.
func LoadCatalog(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog not found: %w", err)
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, fmt.Errorf("no CUE instances in %s", path)
		}
		if instances[0].Err != nil {
			return nil, fmt.Errorf("loading catalog: %w", instances[0].Err)
		}
		value = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	return CompileCatalog(value)
}

// CompileCatalog extracts entries from a built CUE value. Used directly by
// tests via cuecontext.CompileString.
func CompileCatalog(value cue.Value) (*Catalog, error) {
	modifiers := value.LookupPath(cue.ParsePath("modifier"))
	if !modifiers.Exists() {
		return nil, fmt.Errorf("catalog has no top-level \"modifier\" struct")
	}

	iter, err := modifiers.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating modifiers: %w", err)
	}

	cat := &Catalog{}
	for iter.Next() {
		entry, err := compileEntry(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		cat.Entries = append(cat.Entries, entry)
	}

	if errs := cat.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errs[0])
	}
	return cat, nil
}

func compileEntry(id string, v cue.Value) (Entry, error) {
	entry := Entry{ID: id, Name: id, LevelKey: id}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return entry, &CompileError{Entry: id, Field: "name", Message: err.Error(), Pos: nameVal.Pos()}
		}
		entry.Name = name
	}

	scopeVal := v.LookupPath(cue.ParsePath("scope"))
	if !scopeVal.Exists() {
		return entry, &CompileError{Entry: id, Field: "scope", Message: "scope is required", Pos: v.Pos()}
	}
	scope, err := scopeVal.String()
	if err != nil {
		return entry, &CompileError{Entry: id, Field: "scope", Message: err.Error(), Pos: scopeVal.Pos()}
	}
	entry.Scope = ScopeKind(scope)
	if !ValidScope(entry.Scope) {
		return entry, &CompileError{Entry: id, Field: "scope", Message: fmt.Sprintf("unknown scope %q", scope), Pos: scopeVal.Pos()}
	}

	entry.Magnitude, err = compileMagnitude(id, v.LookupPath(cue.ParsePath("magnitude")))
	if err != nil {
		return entry, err
	}

	entry.Duration, err = compileDuration(id, v.LookupPath(cue.ParsePath("duration")))
	if err != nil {
		return entry, err
	}

	if offVal := v.LookupPath(cue.ParsePath("offset")); offVal.Exists() {
		off, err := offVal.Int64()
		if err != nil {
			return entry, &CompileError{Entry: id, Field: "offset", Message: err.Error(), Pos: offVal.Pos()}
		}
		entry.Offset = int(off)
	}

	if grantVal := v.LookupPath(cue.ParsePath("grant")); grantVal.Exists() {
		grant, err := grantVal.Bool()
		if err != nil {
			return entry, &CompileError{Entry: id, Field: "grant", Message: err.Error(), Pos: grantVal.Pos()}
		}
		entry.Grant = grant
	}

	if keyVal := v.LookupPath(cue.ParsePath("level_key")); keyVal.Exists() {
		key, err := keyVal.String()
		if err != nil {
			return entry, &CompileError{Entry: id, Field: "level_key", Message: err.Error(), Pos: keyVal.Pos()}
		}
		entry.LevelKey = key
	}

	matchVal := v.LookupPath(cue.ParsePath("match"))
	if matchVal.Exists() {
		entry.Include, err = compilePattern(id, "match.include", matchVal.LookupPath(cue.ParsePath("include")))
		if err != nil {
			return entry, err
		}
		entry.Exclude, err = compilePattern(id, "match.exclude", matchVal.LookupPath(cue.ParsePath("exclude")))
		if err != nil {
			return entry, err
		}
		if entry.Include == nil {
			return entry, &CompileError{Entry: id, Field: "match.include", Message: "match requires an include pattern", Pos: matchVal.Pos()}
		}
	}

	return entry, nil
}

// compileMagnitude accepts a bare number (direct value) or a struct with
// base and per_level terms.
func compileMagnitude(id string, v cue.Value) (Magnitude, error) {
	if !v.Exists() {
		return Magnitude{}, &CompileError{Entry: id, Field: "magnitude", Message: "magnitude is required"}
	}
	if direct, err := v.Float64(); err == nil {
		return Magnitude{Base: direct}, nil
	}

	var m Magnitude
	baseVal := v.LookupPath(cue.ParsePath("base"))
	if !baseVal.Exists() {
		return m, &CompileError{Entry: id, Field: "magnitude.base", Message: "base is required", Pos: v.Pos()}
	}
	base, err := baseVal.Float64()
	if err != nil {
		return m, &CompileError{Entry: id, Field: "magnitude.base", Message: err.Error(), Pos: baseVal.Pos()}
	}
	m.Base = base

	if stepVal := v.LookupPath(cue.ParsePath("per_level")); stepVal.Exists() {
		step, err := stepVal.Float64()
		if err != nil {
			return m, &CompileError{Entry: id, Field: "magnitude.per_level", Message: err.Error(), Pos: stepVal.Pos()}
		}
		m.PerLevel = step
	}
	return m, nil
}

// compileDuration accepts a bare number of seconds or a {short, long} pair
// of variants selected by configuration.
func compileDuration(id string, v cue.Value) (Duration, error) {
	if !v.Exists() {
		return Duration{}, &CompileError{Entry: id, Field: "duration", Message: "duration is required"}
	}
	if seconds, err := v.Float64(); err == nil {
		return Duration{Frames: DurationSeconds(seconds)}, nil
	}

	var d Duration
	shortVal := v.LookupPath(cue.ParsePath("short"))
	longVal := v.LookupPath(cue.ParsePath("long"))
	if !shortVal.Exists() || !longVal.Exists() {
		return d, &CompileError{Entry: id, Field: "duration", Message: "duration needs a number or {short, long}", Pos: v.Pos()}
	}
	short, err := shortVal.Float64()
	if err != nil {
		return d, &CompileError{Entry: id, Field: "duration.short", Message: err.Error(), Pos: shortVal.Pos()}
	}
	long, err := longVal.Float64()
	if err != nil {
		return d, &CompileError{Entry: id, Field: "duration.long", Message: err.Error(), Pos: longVal.Pos()}
	}
	d.Frames = DurationSeconds(short)
	d.AltFrames = DurationSeconds(long)
	return d, nil
}

func compilePattern(id, field string, v cue.Value) (*regexp.Regexp, error) {
	if !v.Exists() {
		return nil, nil
	}
	pattern, err := v.String()
	if err != nil {
		return nil, &CompileError{Entry: id, Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &CompileError{Entry: id, Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return re, nil
}
