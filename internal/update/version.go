package update

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a release version, major.minor.patch. Development builds
// ("dev", commit hashes) do not parse; the updater treats them as
// non-upgradeable.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion parses a release tag such as "v1.4.0" or "1.4.0".
func ParseVersion(s string) (Version, error) {
	fields := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "v"), ".")
	if len(fields) != 3 {
		return Version{}, fmt.Errorf("malformed version %q", s)
	}

	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("malformed version %q", s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1 if v is older than other, 0 if equal, 1 if newer.
func (v Version) Compare(other Version) int {
	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		switch {
		case p[0] < p[1]:
			return -1
		case p[0] > p[1]:
			return 1
		}
	}
	return 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
