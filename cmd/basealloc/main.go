// Demonstration harness for the basealloc allocator.
// Prints the host's virtual-memory page size, the value that seeds all
// arena and slab sizing, and optionally runs a short allocation demo.

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oda/basealloc"
)

var Version = "0.0.0"

//nolint:gochecknoglobals
var CLI struct {
	Version   kong.VersionFlag `help:"Show version number"`
	LogLevel  string           `help:"Logging level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string           `help:"Logging format" enum:"console,json" default:"console"`
	Demo      bool             `help:"Exercise the arena and slab allocators after printing the page size"`
}

func main() {
	vars := kong.Vars{}
	vars["version"] = Version
	kongParser, err := kong.New(&CLI, vars)
	if err != nil {
		panic(err)
	}

	_, err = kongParser.Parse(os.Args[1:])
	kongParser.FatalIfErrorf(err)

	// Configure logging
	logConfig := zap.NewProductionConfig()
	logConfig.Encoding = CLI.LogFormat
	var logLevel zapcore.Level
	if err := logLevel.UnmarshalText([]byte(CLI.LogLevel)); err != nil {
		panic(err)
	}
	logConfig.Level = zap.NewAtomicLevelAt(logLevel)

	log, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)

	pageSize, err := basealloc.PageSize()
	if err != nil {
		// Never print a fabricated value; report the failure instead.
		log.Fatal("Failed to query page size", zap.Error(err))
	}

	fmt.Printf("Page size: %d\n", pageSize)

	if CLI.Demo {
		if err := runDemo(log, pageSize); err != nil {
			log.Fatal("Allocator demo failed", zap.Error(err))
		}
	}
}

// runDemo allocates a handful of regions from an arena and a slab and
// logs the resulting accounting.
func runDemo(log *zap.Logger, pageSize int) error {
	arena, err := basealloc.NewArena(0)
	if err != nil {
		return err
	}
	defer arena.Release()

	for _, size := range []int{64, 256, 1024, 3 * pageSize} {
		if _, err := arena.AllocBytes(size); err != nil {
			return err
		}
	}
	log.Info("Arena demo complete",
		zap.Int64("allocations", arena.Allocs()),
		zap.Int64("bytes", arena.Used()))

	class, err := basealloc.ClassFor(64)
	if err != nil {
		return err
	}
	slab, err := basealloc.NewSlab(class)
	if err != nil {
		return err
	}
	defer slab.Release()

	region, err := slab.Get()
	if err != nil {
		return err
	}
	log.Info("Slab demo complete",
		zap.Int("class_size", class.Size),
		zap.Int("slots", slab.Slots()),
		zap.Int("used", slab.Used()))

	return slab.Put(region)
}
