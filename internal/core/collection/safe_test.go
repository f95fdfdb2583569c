package collection

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T comparable](s *Safe[T]) []T {
	var out []T
	s.ForEach(func(item T) { out = append(out, item) })
	return out
}

func TestSafeAddVisibleNextTraversal(t *testing.T) {
	s := NewSafe[string]()
	assert.True(t, s.IsEmpty())

	s.Add("a")
	assert.False(t, s.IsEmpty(), "queued adds count as content")
	assert.Equal(t, []string{"a"}, collect(s))

	var visited []string
	s.ForEach(func(item string) {
		visited = append(visited, item)
		s.Add("b")
	})
	assert.Equal(t, []string{"a"}, visited, "items added mid-traversal wait for the next one")
	assert.Equal(t, []string{"a", "b"}, collect(s))
}

func TestSafeRemoveDuringTraversal(t *testing.T) {
	cases := []struct {
		name     string
		remove   func(current int) []int
		expected []int
		after    []int
	}{
		{
			name: "remove_later_item_skips_it",
			remove: func(current int) []int {
				if current == 1 {
					return []int{3}
				}
				return nil
			},
			expected: []int{1, 2, 4},
			after:    []int{1, 2, 4},
		},
		{
			name: "remove_visited_item_is_not_retracted",
			remove: func(current int) []int {
				if current == 3 {
					return []int{1}
				}
				return nil
			},
			expected: []int{1, 2, 3, 4},
			after:    []int{2, 3, 4},
		},
		{
			name: "remove_self",
			remove: func(current int) []int {
				if current == 2 {
					return []int{2}
				}
				return nil
			},
			expected: []int{1, 2, 3, 4},
			after:    []int{1, 3, 4},
		},
		{
			name: "remove_unknown_is_noop",
			remove: func(current int) []int {
				if current == 1 {
					return []int{42}
				}
				return nil
			},
			expected: []int{1, 2, 3, 4},
			after:    []int{1, 2, 3, 4},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSafe[int]()
			for i := 1; i <= 4; i++ {
				s.Add(i)
			}
			var visited []int
			s.ForEach(func(item int) {
				visited = append(visited, item)
				for _, r := range c.remove(item) {
					s.Remove(r)
				}
			})
			assert.Equal(t, c.expected, visited)
			assert.Equal(t, c.after, s.Items())
		})
	}
}

func TestSafeRemoveCollapsesDuplicates(t *testing.T) {
	s := NewSafe[string]()
	s.Add("x")
	s.Add("x")
	s.Add("y")
	assert.Equal(t, []string{"x", "x", "y"}, collect(s))

	s.Remove("x")
	assert.Equal(t, []string{"y"}, collect(s))
	assert.False(t, s.Contains("x"))
	assert.True(t, s.Contains("y"))
}

func TestSafeRemoveThenAdd(t *testing.T) {
	t.Run("inside_traversal", func(t *testing.T) {
		s := NewSafe[int]()
		s.Add(1)
		s.Add(2)
		var visited []int
		s.ForEach(func(item int) {
			visited = append(visited, item)
			if item == 1 {
				s.Remove(2)
				s.Add(2)
			}
		})
		assert.Equal(t, []int{1}, visited, "a removed item stays skipped for the rest of the traversal")
		assert.Equal(t, []int{1, 2}, collect(s))
	})

	t.Run("between_traversals", func(t *testing.T) {
		s := NewSafe[int]()
		s.Add(1)
		collect(s)

		s.Remove(1)
		s.Add(1)
		assert.True(t, s.Contains(1))
		assert.Equal(t, []int{1}, collect(s))
	})
}

func TestSafeAddThenRemove(t *testing.T) {
	t.Run("inside_traversal", func(t *testing.T) {
		s := NewSafe[int]()
		s.Add(1)
		s.ForEach(func(int) {
			s.Add(2)
			s.Remove(2)
		})
		assert.Equal(t, []int{1, 2}, collect(s))
	})

	t.Run("live_item", func(t *testing.T) {
		s := NewSafe[int]()
		s.Add(1)
		s.Add(2)
		collect(s)

		s.Add(1)
		s.Remove(1)
		assert.Equal(t, []int{2, 1}, collect(s), "the queued add lands after the removal")
	})
}

// TestSafeRandomizedTraversal issues random adds and removes of old and new
// items from inside the visitor and checks the traversal and the resulting
// live sequence.
func TestSafeRandomizedTraversal(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const fresh = 1000

	for round := 0; round < 300; round++ {
		s := NewSafe[int]()
		initial := rng.IntN(20) + 1
		for i := 0; i < initial; i++ {
			s.Add(i)
		}
		s.ForEach(func(int) {})

		removed := make(map[int]bool)
		var added []int
		pool := make([]int, 0, initial+8)
		for i := 0; i < initial; i++ {
			pool = append(pool, i)
		}
		nextFresh := fresh
		var visited []int
		seen := make(map[int]bool)

		s.ForEach(func(item int) {
			require.False(t, removed[item], "item %d visited after removal", item)
			require.False(t, seen[item], "item %d visited twice", item)
			seen[item] = true
			visited = append(visited, item)

			for n := rng.IntN(4); n > 0; n-- {
				switch rng.IntN(3) {
				case 0:
					victim := pool[rng.IntN(len(pool))]
					s.Remove(victim)
					removed[victim] = true
				case 1:
					again := pool[rng.IntN(len(pool))]
					s.Add(again)
					added = append(added, again)
				default:
					s.Add(nextFresh)
					added = append(added, nextFresh)
					pool = append(pool, nextFresh)
					nextFresh++
				}
			}
		})

		for _, item := range visited {
			assert.Less(t, item, fresh, "fresh items are not visited in the traversal that added them")
		}

		var expected []int
		for i := 0; i < initial; i++ {
			if !removed[i] {
				expected = append(expected, i)
			}
		}
		expected = append(expected, added...)

		live := collect(s)
		require.Equal(t, expected, live, "round %d", round)

		want := make(map[int]bool)
		for i := 0; i < initial; i++ {
			if !removed[i] {
				want[i] = true
			}
		}
		for _, a := range added {
			want[a] = true
		}
		got := make(map[int]bool)
		for _, item := range live {
			got[item] = true
		}
		assert.Equal(t, want, got, "live set is (initial - removed) + added in round %d", round)
		assert.False(t, slices.ContainsFunc(live, func(i int) bool { return removed[i] && !slices.Contains(added, i) }))
	}
}
