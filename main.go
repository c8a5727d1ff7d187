// rgsskit — инструментарий игровых ресурсов RPG Maker XP/VX/VX Ace:
// кодек архивов RGSSAD/RGSS2A/RGSS3A и перекодировщик данных rvdata2
// в JSON-схему MV/MZ.
package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/spf13/viper"

	"github.com/globalmac/rgsskit/mv"
	"github.com/globalmac/rgsskit/rgssad"
)

const version = "1.0.0"

func usage() {
	fmt.Println(`Extract rgssad/rgss2a/rgss3a files.
Commands:
    help
    version
    list        <archive>
    unpack      <archive> <folder> [<filter>]
    pack        <folder> <archive> [<version>]
    tomv        [<data folder>]`)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	loadConfig()

	if len(args) < 1 {
		usage()
		return 1
	}

	switch args[0] {
	case "help":
		usage()
		return 0

	case "version":
		fmt.Printf("version: %s\n", version)
		return 0

	case "list":
		if len(args) < 2 {
			usage()
			return 1
		}
		return cmdList(args[1])

	case "unpack":
		if len(args) < 3 {
			usage()
			return 1
		}
		filter := ".*"
		if len(args) > 3 {
			filter = args[3]
		}
		return cmdUnpack(args[1], args[2], filter)

	case "pack":
		if len(args) < 3 {
			usage()
			return 1
		}
		ver := 1
		if len(args) > 3 {
			v, err := strconv.Atoi(args[3])
			if err != nil {
				fmt.Println("Not supported version (must be 1-3).")
				return 1
			}
			ver = v
		}
		return cmdPack(args[1], args[2], ver)

	case "tomv":
		dir := viper.GetString("data_dir")
		if len(args) > 1 {
			dir = args[1]
		}
		return cmdToMV(dir)
	}

	usage()
	return 1
}

func cmdList(path string) int {
	a, err := rgssad.Open(path)
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		return 1
	}
	defer a.Close()

	for _, e := range a.Entries() {
		fmt.Printf("%s: size=%d, offset=%d, magic=%d\n", e.Name, e.Meta.Size, e.Meta.Offset, e.Meta.Magic)
	}
	return 0
}

func cmdUnpack(path, dir, filter string) int {
	re, err := regexp.Compile(filter)
	if err != nil {
		fmt.Printf("FAILED: Invalid regex filter: %s\n", filter)
		return 1
	}

	a, err := rgssad.Open(path)
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		return 1
	}
	defer a.Close()

	err = a.ExtractTo(dir, re, func(name string) {
		fmt.Printf("Extracting: %s\n", name)
	})
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		return 1
	}
	return 0
}

func cmdPack(src, out string, ver int) int {
	if ver < 1 || ver > 3 {
		fmt.Println("Not supported version (must be 1-3).")
		return 1
	}

	tree, err := rgssad.CollectDir(src)
	if err != nil {
		if errors.Is(err, rgssad.ErrNotADirectory) {
			fmt.Println("FAILED: source is not a directory.")
		} else {
			fmt.Printf("FAILED: %v\n", err)
		}
		return 1
	}

	err = rgssad.Pack(out, ver, src, tree, func(name string) {
		fmt.Printf("Packing: %s\n", name)
	})
	if err != nil {
		fmt.Printf("FAILED: unable to write archive. %v\n", err)
		return 1
	}
	return 0
}

func cmdToMV(dir string) int {
	if err := mv.TranscodeDir(dir); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		return 1
	}
	return 0
}
