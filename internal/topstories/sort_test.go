package topstories

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storyAt(title string, published time.Time) Story {
	return Story{Title: title, PublishedDate: NewTimestamp(published)}
}

func titles(stories []Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.Title
	}
	return out
}

func randomStories(r *rand.Rand, n int) []Story {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := r.Perm(n * 10)[:n]
	stories := make([]Story, n)
	for i, off := range offsets {
		stories[i] = storyAt(fmt.Sprintf("story-%d", off), base.Add(time.Duration(off)*time.Minute))
	}
	return stories
}

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		input   string
		want    SortMode
		wantErr bool
	}{
		{"", SortDefault, false},
		{"default", SortDefault, false},
		{"Newest", SortNewest, false},
		{" OLDEST ", SortOldest, false},
		{"random", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSortMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestSortModeNext(t *testing.T) {
	assert.Equal(t, SortNewest, SortDefault.Next())
	assert.Equal(t, SortOldest, SortNewest.Next())
	assert.Equal(t, SortDefault, SortOldest.Next())
}

func TestSortOrders(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	input := []Story{
		storyAt("middle", base),
		storyAt("latest", base.Add(time.Hour)),
		storyAt("earliest", base.Add(-time.Hour)),
	}

	assert.Equal(t, []string{"middle", "latest", "earliest"}, titles(Sort(input, SortDefault)))
	assert.Equal(t, []string{"latest", "middle", "earliest"}, titles(Sort(input, SortNewest)))
	assert.Equal(t, []string{"earliest", "middle", "latest"}, titles(Sort(input, SortOldest)))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	input := []Story{
		storyAt("b", base),
		storyAt("c", base.Add(time.Hour)),
		storyAt("a", base.Add(-time.Hour)),
	}
	before := slices.Clone(input)

	for _, mode := range []SortMode{SortDefault, SortNewest, SortOldest} {
		out := Sort(input, mode)
		assert.Equal(t, before, input, "mode %s mutated input", mode)
		if len(out) > 0 {
			assert.NotSame(t, &input[0], &out[0], "mode %s returned the input slice", mode)
		}
	}
}

func TestSortIsStableForTies(t *testing.T) {
	same := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	input := []Story{
		storyAt("first", same),
		storyAt("second", same),
		storyAt("later", same.Add(time.Minute)),
		storyAt("third", same),
	}

	assert.Equal(t, []string{"later", "first", "second", "third"}, titles(Sort(input, SortNewest)))
	assert.Equal(t, []string{"first", "second", "third", "later"}, titles(Sort(input, SortOldest)))
}

func TestSortProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		input := randomStories(r, 1+r.Intn(30))

		newest := Sort(input, SortNewest)
		oldest := Sort(input, SortOldest)

		reversed := slices.Clone(oldest)
		slices.Reverse(reversed)
		require.Equal(t, titles(reversed), titles(newest), "newest must be the reverse of oldest")

		require.Equal(t, input, Sort(input, SortDefault), "default must keep input order")

		for _, mode := range []SortMode{SortDefault, SortNewest, SortOldest} {
			once := Sort(input, mode)
			require.Equal(t, once, Sort(once, mode), "sorting by %s must be idempotent", mode)
		}
	}
}

func TestSortEmpty(t *testing.T) {
	assert.Empty(t, Sort(nil, SortNewest))
	assert.Empty(t, Sort([]Story{}, SortOldest))
}
