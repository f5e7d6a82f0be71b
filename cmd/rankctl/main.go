// Command rankctl prints the rank ladder reached on each day of a range,
// using the seeded tier catalog.
//
// Usage:
//
//	rankctl -from 0 -to 30 -constant 3
//	rankctl -days-to "9 9 3"
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"anoa.com/practiceforum/internal/bootstrap"
	rankService "anoa.com/practiceforum/internal/modules/rank/service"
	tierService "anoa.com/practiceforum/internal/modules/tier/service"
	"github.com/fatih/color"
)

func main() {
	from := flag.Int("from", 0, "first day of the range")
	to := flag.Int("to", 30, "last day of the range")
	constant := flag.Float64("constant", 3.0, "rank constant (X for translation, Y for writing)")
	daysTo := flag.String("days-to", "", `print the days needed for "major sub minor" orders instead`)
	flag.Parse()

	catalog := seedCatalog()
	if err := catalog.Validate(); err != nil {
		color.Red("invalid catalog: %v", err)
		os.Exit(1)
	}

	if *daysTo != "" {
		if err := printDaysTo(catalog, *daysTo, *constant); err != nil {
			color.Red("%v", err)
			os.Exit(1)
		}
		return
	}

	if *from < 0 || *to < *from {
		color.Red("invalid range [%d, %d]", *from, *to)
		os.Exit(1)
	}

	if err := printLadder(catalog, *from, *to, *constant); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func seedCatalog() *tierService.Catalog {
	majors := bootstrap.MajorTierCatalog()
	subs := bootstrap.SubMajorTierCatalog()
	minors := bootstrap.MinorTierCatalog()
	for i := range majors {
		majors[i].ID = uint(i + 1)
	}
	for i := range subs {
		subs[i].ID = uint(i + 1)
	}
	for i := range minors {
		minors[i].ID = uint(i + 1)
	}
	return tierService.NewCatalog(majors, subs, minors)
}

func printLadder(catalog *tierService.Catalog, from, to int, constant float64) error {
	minorCount, subCount, majorCount := catalog.Counts()
	color.Yellow("Rank ladder, constant %.2f, days %d..%d", constant, from, to)

	var last string
	for day := from; day <= to; day++ {
		idx, err := rankService.ResolveTier(day, constant, minorCount, subCount, majorCount)
		if err != nil {
			return err
		}
		triple := rankService.TripleAt(catalog, idx)
		display := triple.Display()

		marker := " "
		if display != last {
			marker = "*"
			last = display
		}
		fmt.Printf("%s day %4d  %s %s %s\n", marker, day,
			majorColor(triple.Major.ColorCode).Sprint(triple.Major.Name), triple.SubMajor.Name, triple.Minor.Name)
	}
	return nil
}

func printDaysTo(catalog *tierService.Catalog, orders string, constant float64) error {
	fields := strings.Fields(orders)
	if len(fields) != 3 {
		return fmt.Errorf(`-days-to wants "major sub minor", got %q`, orders)
	}
	var pos [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("invalid order %q: %w", f, err)
		}
		pos[i] = n
	}

	minorCount, subCount, majorCount := catalog.Counts()
	days, err := rankService.DaysToRank(pos[0], pos[1], pos[2], constant, minorCount, subCount, majorCount)
	if err != nil {
		return err
	}

	major, sub, minor, ok := catalog.FindByOrders(pos[0], pos[1], pos[2])
	name := orders
	if ok {
		name = fmt.Sprintf("%s %s %s", majorColor(major.ColorCode).Sprint(major.Name), sub.Name, minor.Name)
	}
	fmt.Printf("%s: %d days\n", name, days)
	return nil
}

// majorColor renders a "#RRGGBB" tier color, plain white when unparseable.
func majorColor(hex string) *color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.New(color.FgWhite)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.New(color.FgWhite)
	}
	return color.RGB(int(v>>16&0xff), int(v>>8&0xff), int(v&0xff))
}
