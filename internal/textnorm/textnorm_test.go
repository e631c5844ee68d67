package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalizeFoldsUkrainianLetters(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Салтівка", "салтивка"},
		{"Єврик!", "еврик"},
		{"2-кімнатна,  Центр", "2 кимнатна центр"},
		{"  ", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIntsJoinsThousandGroupsOnly(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"до 50 000 грн", []int{50000}},
		{"25000 40000", []int{25000, 40000}},
		{"1-2 кімнати", []int{1, 2}},
		{"1 200 000", []int{1200000}},
		{"без чисел", nil},
	}
	for _, c := range cases {
		got := Ints(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Ints(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStem(t *testing.T) {
	cases := []struct{ in, want string }{
		{"салтивку", "салтивк"},
		{"оренда", "оренд"},
		{"дим", "дим"},
		{"центру", "центр"},
		// folded form of "поверхів"
		{"поверхив", "поверх"},
	}
	for _, c := range cases {
		if got := Stem(c.in); got != c.want {
			t.Errorf("Stem(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestContainsPhraseWholeWords(t *testing.T) {
	if !ContainsPhrase("останний поверх будинку", "останний поверх") {
		t.Error("expected phrase match")
	}
	if ContainsPhrase("евроремонтом", "евроремонт") {
		t.Error("substring inside a longer word must not match")
	}
}
