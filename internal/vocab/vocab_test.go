package vocab

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew_ReservedEntries(t *testing.T) {
	v := New()

	if v.Len() != Reserved {
		t.Fatalf("Len() = %d, want %d", v.Len(), Reserved)
	}

	if id, ok := v.ID(PadToken); !ok || id != PadID {
		t.Errorf("ID(%q) = %d, %v; want %d, true", PadToken, id, ok, PadID)
	}

	if id, ok := v.ID(OOVToken); !ok || id != OOVID {
		t.Errorf("ID(%q) = %d, %v; want %d, true", OOVToken, id, ok, OOVID)
	}
}

func TestBuild_DescendingFrequency(t *testing.T) {
	corpus := [][]string{
		{"set", "a", "timer"},
		{"play", "a", "song"},
		{"set", "a", "reminder"},
	}

	v := Build(corpus, 100)

	// a=3, set=2, then the count-1 tokens in first-seen order.
	want := []string{PadToken, OOVToken, "a", "set", "timer", "play", "song", "reminder"}
	if got := v.Tokens(); !equalStrings(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestBuild_TieBreakIsFirstOccurrence(t *testing.T) {
	corpus := [][]string{
		{"zulu", "alpha"},
		{"mike", "alpha", "zulu"},
	}

	v := Build(corpus, 100)

	// zulu and alpha tie at 2; zulu was seen first.
	want := []string{PadToken, OOVToken, "zulu", "alpha", "mike"}
	if got := v.Tokens(); !equalStrings(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestBuild_SizeCap(t *testing.T) {
	corpus := [][]string{{"a", "a", "a", "b", "b", "c", "d"}}

	tests := []struct {
		name string
		size int
		want []string
	}{
		{"cap keeps most frequent", 4, []string{PadToken, OOVToken, "a", "b"}},
		{"cap equal to reserved", 2, []string{PadToken, OOVToken}},
		{"cap below reserved", 0, []string{PadToken, OOVToken}},
		{"cap above distinct", 50, []string{PadToken, OOVToken, "a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Build(corpus, tt.size)
			if got := v.Tokens(); !equalStrings(got, tt.want) {
				t.Errorf("Build(size=%d).Tokens() = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestBuild_Invariants(t *testing.T) {
	corpora := [][][]string{
		nil,
		{{}},
		{{"x"}},
		{{"one", "two", "two"}, {"three", "three", "three"}},
		{{PadToken, OOVToken, "real"}},
	}

	for _, corpus := range corpora {
		for _, size := range []int{0, 2, 3, 5000} {
			v := Build(corpus, size)

			if id, ok := v.ID(PadToken); !ok || id != PadID {
				t.Errorf("corpus %v size %d: %s = %d, %v", corpus, size, PadToken, id, ok)
			}

			if id, ok := v.ID(OOVToken); !ok || id != OOVID {
				t.Errorf("corpus %v size %d: %s = %d, %v", corpus, size, OOVToken, id, ok)
			}

			if size >= Reserved && v.Len() > size {
				t.Errorf("corpus %v size %d: Len() = %d exceeds cap", corpus, size, v.Len())
			}

			seen := make(map[int]string)
			for _, tok := range v.Tokens() {
				id, _ := v.ID(tok)
				if prev, dup := seen[id]; dup {
					t.Errorf("id %d shared by %q and %q", id, prev, tok)
				}
				seen[id] = tok
			}
		}
	}
}

func TestCounts_MergeMatchesSinglePass(t *testing.T) {
	left := [][]string{{"b", "a"}, {"c"}}
	right := [][]string{{"a", "d"}, {"d", "b"}}

	whole := NewCounts()
	for _, row := range append(append([][]string{}, left...), right...) {
		whole.Add(row...)
	}

	l, r := NewCounts(), NewCounts()
	for _, row := range left {
		l.Add(row...)
	}
	for _, row := range right {
		r.Add(row...)
	}
	l.Merge(r)

	got, want := l.Ranked(), whole.Ranked()
	if len(got) != len(want) {
		t.Fatalf("merged Ranked() has %d tokens, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ranked()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if l.Distinct() != 4 {
		t.Errorf("Distinct() = %d, want 4", l.Distinct())
	}

	if l.Count("b") != 2 {
		t.Errorf("Count(b) = %d, want 2", l.Count("b"))
	}
}

func TestSave_Layout(t *testing.T) {
	v := Build([][]string{{"timer", "<b>"}}, 10)

	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := "{\n  \"<PAD>\": 0,\n  \"<OOV>\": 1,\n  \"timer\": 2,\n  \"<b>\": 3\n}\n"
	if buf.String() != want {
		t.Errorf("Save() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	v := Build([][]string{{"hey", "aeva", "what's", "2+2", "déjà"}, {"aeva"}}, 5000)

	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !equalStrings(loaded.Tokens(), v.Tokens()) {
		t.Errorf("Load(Save(v)).Tokens() = %v, want %v", loaded.Tokens(), v.Tokens())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing pad", `{"<OOV>": 1, "a": 0}`},
		{"swapped reserved", `{"<PAD>": 1, "<OOV>": 0}`},
		{"gap in ids", `{"<PAD>": 0, "<OOV>": 1, "a": 3}`},
		{"duplicate id", `{"<PAD>": 0, "<OOV>": 1, "a": 2, "b": 2}`},
		{"negative id", `{"<PAD>": 0, "<OOV>": 1, "a": -1}`},
		{"empty", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Load(%s) error = %v, want ErrInvalid", tt.input, err)
			}
		})
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"<PAD>": 0,`))
	if err == nil {
		t.Fatal("Load of truncated JSON should fail")
	}
}

func TestVocabulary_JSONMarshalers(t *testing.T) {
	type wrapper struct {
		Vocab *Vocabulary `json:"vocab"`
	}

	in := wrapper{Vocab: Build([][]string{{"x", "y", "y"}}, 10)}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal(%s): %v", data, err)
	}

	if !equalStrings(out.Vocab.Tokens(), in.Vocab.Tokens()) {
		t.Errorf("round trip = %v, want %v", out.Vocab.Tokens(), in.Vocab.Tokens())
	}
}

func TestToken(t *testing.T) {
	v := Build([][]string{{"only"}}, 10)

	if tok, ok := v.Token(2); !ok || tok != "only" {
		t.Errorf("Token(2) = %q, %v; want %q, true", tok, ok, "only")
	}

	for _, id := range []int{-1, 3} {
		if _, ok := v.Token(id); ok {
			t.Errorf("Token(%d) reported present", id)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
