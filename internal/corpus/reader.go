// Package corpus reads interlinear transcription sources into ordered token
// streams. Reading is a pure mapping from raw text to token records: the
// reader never resolves transcriber disagreements, it exposes them.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// ParseError reports a source that violates the interlinear record grammar.
// It is fatal for that source and must halt the calling phase's run.
type ParseError struct {
	Source string // File or stream name
	Line   int    // 1-based physical line number
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Msg)
}

// Reader parses interlinear transcription sources.
//
// The format is line-oriented:
//
//	# comment
//	<f78r> <! $L=B $S=B>
//	<f78r.2;H> chedy.qokeedy.sh?dy
//
// A page header names the folio and carries $L (partition) and $S (section)
// variables. A locus line names folio.line and the transcriber tag, followed
// by period-delimited tokens. Multiple transcriber passes over the same locus
// may coexist in one source.
type Reader struct {
	preferred        string // Keep only this transcriber's pass ("" = all)
	includeUncertain bool
}

// NewReader creates a reader with the given corpus configuration.
func NewReader(cfg model.CorpusConfig) *Reader {
	return &Reader{
		preferred:        cfg.Transcriber,
		includeUncertain: cfg.IncludeUncertain,
	}
}

// pageState carries the current page header variables while scanning.
type pageState struct {
	folio     string
	partition model.Partition
	section   model.Section
}

// Read parses one source into an ordered token stream. The source name is
// used in error messages only.
func (r *Reader) Read(rd io.Reader, source string) ([]model.Token, error) {
	var tokens []model.Token
	page := pageState{partition: model.PartitionA, section: model.SectionUnknown}

	sc := bufio.NewScanner(rd)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "<") {
			return tokens, &ParseError{Source: source, Line: lineNum, Msg: "expected locus or page header starting with '<'"}
		}

		end := strings.Index(line, ">")
		if end < 0 {
			return tokens, &ParseError{Source: source, Line: lineNum, Msg: "unterminated locus marker"}
		}
		locus := line[1:end]
		rest := strings.TrimSpace(line[end+1:])

		if !strings.Contains(locus, ".") {
			// Page header: <folio> with optional <! $K=V ...> variable group
			page.folio = locus
			if err := parsePageVars(rest, &page); err != nil {
				return tokens, &ParseError{Source: source, Line: lineNum, Msg: err.Error()}
			}
			continue
		}

		folio, lineIdx, transcriber, err := parseLocus(locus)
		if err != nil {
			return tokens, &ParseError{Source: source, Line: lineNum, Msg: err.Error()}
		}
		if page.folio != "" && folio != page.folio {
			// A locus may open a folio without a page header; adopt it.
			page = pageState{folio: folio, partition: page.partition, section: page.section}
		}
		if r.preferred != "" && transcriber != r.preferred {
			continue
		}

		words, err := splitWords(rest)
		if err != nil {
			return tokens, &ParseError{Source: source, Line: lineNum, Msg: err.Error()}
		}
		for wi, w := range words {
			tokens = append(tokens, model.Token{
				Raw:         w.text,
				Corpus:      page.partition,
				Section:     page.section,
				Folio:       folio,
				Line:        lineIdx,
				Word:        wi,
				Transcriber: transcriber,
				Uncertain:   w.uncertain,
				Alternates:  w.alternates,
			})
		}
	}
	if err := sc.Err(); err != nil {
		return tokens, fmt.Errorf("read %s: %w", source, err)
	}

	markDisagreements(tokens)
	if !r.includeUncertain {
		tokens = dropUncertain(tokens)
	}
	return tokens, nil
}

// ReadFile parses a single transcription file.
func (r *Reader) ReadFile(path string) ([]model.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(f, path)
}

// ReadFiles parses several sources into one stream. A ParseError in one
// source halts that source but tokens already read from earlier sources are
// returned alongside the error.
func (r *Reader) ReadFiles(paths ...string) ([]model.Token, error) {
	var all []model.Token
	for _, p := range paths {
		toks, err := r.ReadFile(p)
		all = append(all, toks...)
		if err != nil {
			return all, err
		}
	}
	// Passes over the same locus may live in different sources.
	markDisagreements(all)
	if !r.includeUncertain {
		all = dropUncertain(all)
	}
	return all, nil
}

// parseLocus splits "folio.line;transcriber".
func parseLocus(locus string) (folio string, line int, transcriber string, err error) {
	semi := strings.Index(locus, ";")
	if semi < 0 {
		return "", 0, "", fmt.Errorf("locus %q missing transcriber tag", locus)
	}
	transcriber = locus[semi+1:]
	if transcriber == "" {
		return "", 0, "", fmt.Errorf("locus %q has empty transcriber tag", locus)
	}
	addr := locus[:semi]
	dot := strings.LastIndex(addr, ".")
	if dot < 0 {
		return "", 0, "", fmt.Errorf("locus %q missing line index", locus)
	}
	folio = addr[:dot]
	line, err = strconv.Atoi(addr[dot+1:])
	if err != nil || line < 1 {
		return "", 0, "", fmt.Errorf("locus %q has invalid line index", locus)
	}
	return folio, line, transcriber, nil
}

// parsePageVars reads an optional "<! $K=V ...>" group after a page header.
func parsePageVars(rest string, page *pageState) error {
	if rest == "" {
		return nil
	}
	if !strings.HasPrefix(rest, "<!") {
		return fmt.Errorf("unexpected text after page header: %q", rest)
	}
	end := strings.Index(rest, ">")
	if end < 0 {
		return fmt.Errorf("unterminated page variable group")
	}
	for _, field := range strings.Fields(rest[2:end]) {
		if !strings.HasPrefix(field, "$") {
			continue
		}
		eq := strings.Index(field, "=")
		if eq < 0 {
			continue
		}
		key, val := field[1:eq], field[eq+1:]
		switch key {
		case "L":
			if val != string(model.PartitionA) && val != string(model.PartitionB) {
				return fmt.Errorf("unknown corpus partition %q", val)
			}
			page.partition = model.Partition(val)
		case "S":
			page.section = model.Section(val)
		}
	}
	return nil
}

// word is one parsed token with its uncertainty markers resolved.
type word struct {
	text       string
	uncertain  bool
	alternates []string
}

// splitWords splits a locus text into tokens and interprets inline markers:
// '.' separates words, '!' is a null filler, '?' marks an unreadable glyph,
// and "[a:o]" records alternate readings (first reading kept, rest exposed).
func splitWords(text string) ([]word, error) {
	var words []word
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == ' ' || r == '\t'
	}) {
		w, err := parseWord(raw)
		if err != nil {
			return nil, err
		}
		if w.text == "" {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

func parseWord(raw string) (word, error) {
	var w word
	var b strings.Builder
	variants := []string{}

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch c {
		case '!':
			// Null filler aligning transcriber passes; carries no glyph.
			i++
		case '?', '*':
			w.uncertain = true
			b.WriteByte('?')
			i++
		case '[':
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return w, fmt.Errorf("unbalanced alternate bracket in %q", raw)
			}
			group := raw[i+1 : i+end]
			alts := strings.Split(group, ":")
			if len(alts) < 2 {
				return w, fmt.Errorf("alternate group %q needs at least two readings", group)
			}
			w.uncertain = true
			b.WriteString(alts[0])
			variants = append(variants, alts[1:]...)
			i += end + 1
		case ']':
			return w, fmt.Errorf("unbalanced alternate bracket in %q", raw)
		default:
			b.WriteByte(c)
			i++
		}
	}

	w.text = b.String()
	w.alternates = variants
	if len(w.alternates) == 0 {
		w.alternates = nil
	}
	return w, nil
}

// markDisagreements flags tokens where transcriber passes over the same
// locus read a different string at the same word position. The disagreement
// is exposed on every involved token, never silently resolved.
func markDisagreements(tokens []model.Token) {
	type key struct {
		folio string
		line  int
		word  int
	}
	readings := make(map[key]map[string]bool)
	for _, t := range tokens {
		k := key{t.Folio, t.Line, t.Word}
		if readings[k] == nil {
			readings[k] = make(map[string]bool)
		}
		readings[k][t.Raw] = true
	}
	for i := range tokens {
		k := key{tokens[i].Folio, tokens[i].Line, tokens[i].Word}
		if len(readings[k]) < 2 {
			continue
		}
		tokens[i].Uncertain = true
		alts := make([]string, 0, len(readings[k])-1)
		for alt := range readings[k] {
			if alt == tokens[i].Raw || containsString(tokens[i].Alternates, alt) {
				continue
			}
			alts = append(alts, alt)
		}
		sort.Strings(alts) // map order varies, the stream must not
		tokens[i].Alternates = append(tokens[i].Alternates, alts...)
	}
}

func dropUncertain(tokens []model.Token) []model.Token {
	kept := tokens[:0]
	for _, t := range tokens {
		if !t.Uncertain {
			kept = append(kept, t)
		}
	}
	return kept
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
