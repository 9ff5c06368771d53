package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameString(t *testing.T) {
	tt := []struct {
		name   string
		md     map[string]string
		expect string
	}{
		{name: "no metadata", md: nil, expect: "srewma_statistic"},
		{name: "single", md: map[string]string{"batch": "B-1104"}, expect: "srewma_statistic[batch=B-1104]"},
		{name: "sorted keys", md: map[string]string{"line": "3", "batch": "B-1104"}, expect: "srewma_statistic[batch=B-1104 line=3]"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			n := NewName("srewma_statistic", tc.md)
			assert.Equal(t, tc.expect, n.String())
		})
	}
}

func TestAddMetadata(t *testing.T) {
	n := NewName("srewma_statistic", map[string]string{"batch": "B-1104"})
	n.AddMetadata(map[string]string{"line": "3"})
	assert.Equal(t, "srewma_statistic[batch=B-1104 line=3]", n.String())
}
