package vocab

import "sort"

// TokenCount is a token and its corpus frequency.
type TokenCount struct {
	Token string
	Count int
}

// Counts accumulates token frequencies and remembers first-seen order.
// Partitions counted separately combine with Merge; merging in corpus order
// reproduces the counts of a single pass.
type Counts struct {
	n     map[string]int
	order []string
}

func NewCounts() *Counts {
	return &Counts{n: make(map[string]int)}
}

// Add counts one occurrence of each token.
func (c *Counts) Add(tokens ...string) {
	for _, tok := range tokens {
		if _, seen := c.n[tok]; !seen {
			c.order = append(c.order, tok)
		}
		c.n[tok]++
	}
}

// Merge folds o into c. Tokens new to c are appended in o's first-seen order.
func (c *Counts) Merge(o *Counts) {
	for _, tok := range o.order {
		if _, seen := c.n[tok]; !seen {
			c.order = append(c.order, tok)
		}
		c.n[tok] += o.n[tok]
	}
}

// Count returns the frequency of token.
func (c *Counts) Count(token string) int { return c.n[token] }

// Distinct returns the number of distinct tokens seen.
func (c *Counts) Distinct() int { return len(c.order) }

// Ranked returns tokens by descending count, ties in first-seen order.
func (c *Counts) Ranked() []TokenCount {
	ranked := make([]TokenCount, len(c.order))
	for i, tok := range c.order {
		ranked[i] = TokenCount{Token: tok, Count: c.n[tok]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	return ranked
}
