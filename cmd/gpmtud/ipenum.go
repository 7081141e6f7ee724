package main

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hervehildenbrand/gpmtud/internal/iprange"
)

// NewIPEnumCmd creates the ipenum subcommand.
func NewIPEnumCmd() *cobra.Command {
	var hostsOnly bool

	cmd := &cobra.Command{
		Use:   "ipenum [range...]",
		Short: "Enumerate the addresses of IP ranges, one per line",
		Long: `ipenum prints the IP addresses of the given ranges to standard
output, one address per line. Without arguments, ranges are read from
standard input, one range per line.

Ranges are given either in CIDR notation or as start and end addresses
separated by a usual range indication (whitespace, "to", two or more
periods, a comma, a semicolon, or a dash). A single address is a range
with identical start and end addresses. A range whose start address is
greater than its end address is valid and empty.

By default every address of a CIDR range is printed, including the
network number and directed broadcast address for IPv4 and the
Subnet-Router anycast address for IPv6.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := args
			if len(specs) == 0 {
				var err error
				specs, err = readRanges(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read ranges: %w", err)
				}
			}
			return enumerateRanges(cmd.OutOrStdout(), cmd.ErrOrStderr(), specs, hostsOnly)
		},
	}

	cmd.Flags().BoolVarP(&hostsOnly, "hosts-only", "H", false, "Print only host addresses (affects CIDR only)")

	return cmd
}

// readRanges reads one range specification per line.
func readRanges(r io.Reader) ([]string, error) {
	var specs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			specs = append(specs, line)
		}
	}
	return specs, scanner.Err()
}

// enumerateRanges prints the addresses of each range. Unparseable
// ranges are reported and skipped; the remaining ranges still print.
func enumerateRanges(out, errOut io.Writer, specs []string, hostsOnly bool) error {
	var failed int
	for _, spec := range specs {
		r, err := iprange.Parse(spec)
		if err != nil {
			fmt.Fprintf(errOut, "ERROR: %v\n", err)
			failed++
			continue
		}
		r.Each(hostsOnly, func(a netip.Addr) bool {
			fmt.Fprintln(out, a.String())
			return true
		})
	}

	if failed > 0 {
		return fmt.Errorf("failed to parse %d of %d range(s)", failed, len(specs))
	}
	return nil
}
