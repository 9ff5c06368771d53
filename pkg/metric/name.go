package metric

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-logfmt/logfmt"
)

type metadata map[string]string

// Name is an identifier for a monitored quantity.  Optional metadata distinguishes
// charts run over different processes or product batches.  Names are marshalled to a
// string using a modified logfmt, e.g. srewma_statistic[batch=B-1104 line=3]
type Name struct {
	name string
	md   metadata
}

// String marshals the name to a string representation, such as srewma_statistic[batch=B-1104 line=3]
func (n Name) String() string {
	md, err := MarshalText(n.md)
	if err != nil {
		md = []byte{}
	}
	return n.name + string(md)
}

// NewName returns a new name with the associated metadata
func NewName(name string, md map[string]string) Name {
	return Name{name: name, md: md}
}

// AddMetadata adds additional metadata upserted into the metadata map.
func (n Name) AddMetadata(md map[string]string) {
	for k, v := range md {
		n.md[k] = v
	}
}

// MarshalText will return the metadata encoded as a modified logfmt representation.  Metadata
// opens with a [ then is followed by (key, value) pairs k=v in sorted key order.  Close with
// a ].  Example: [batch=B-1104 line=3]
func MarshalText(m metadata) ([]byte, error) {
	if m == nil {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.Write([]byte("["))
	e := logfmt.NewEncoder(&b)
	for _, k := range keys {
		if err := e.EncodeKeyval(k, m[k]); err != nil {
			return nil, fmt.Errorf("failed to encode %s=%s: %v", k, m[k], err)
		}
	}
	b.Write([]byte("]"))
	return b.Bytes(), nil
}
