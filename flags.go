package bmalloc

import "strings"

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateExternallySynchronized ensures that the allocator will not be synchronized internally.
	// The consumer must guarantee that the allocator is used from only one goroutine at a time or is
	// synchronized by some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	CreateExternallySynchronized: "CreateExternallySynchronized",
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for bit := CreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}

		name, known := createFlagsMapping[bit]
		if !known {
			name = "Unknown"
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}
