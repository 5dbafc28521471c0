// Command cdrtool inspects ROS message types and converts between their
// CDR encoding and a readable field listing.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/introspection"
	"github.com/wippyai/rmw-cdr/linmem"
	"github.com/wippyai/rmw-cdr/msgspec"
	"github.com/wippyai/rmw-cdr/typesupport"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, " ") }

func (a *assignments) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var (
		typeName    = flag.String("type", "", "Message type (pkg/Name or pkg/msg/Name)")
		srvName     = flag.String("srv", "", "Service type (pkg/Name)")
		part        = flag.String("part", "request", "Service part: request or response")
		msgFile     = flag.String("msg", "", "Path to a .msg file to load directly")
		pkg         = flag.String("pkg", "local", "Package name for -msg")
		searchPath  = flag.String("path", "", "Package roots (colon-separated, default AMENT_PREFIX_PATH and ROS_PACKAGE_PATH)")
		decodeHex   = flag.String("decode", "", "Decode a hex-encoded message (- reads stdin)")
		sizeOnly    = flag.Bool("size", false, "Print the type summary and exit")
		witOut      = flag.Bool("wit", false, "Print the type as WIT records")
		bigEndian   = flag.Bool("be", false, "Write big-endian streams")
		encap       = flag.Bool("encap", false, "Streams carry the 4-byte CDR header")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		sets        assignments
	)
	flag.Var(&sets, "set", "Field assignment path=value for encoding (repeatable)")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
		codec.SetLogger(logger)
		typesupport.SetLogger(logger)
		linmem.SetLogger(logger)
	}
	defer func() { _ = logger.Sync() }()

	loader := msgspec.NewLoader(msgspec.Config{Paths: roots(*searchPath)})

	if *interactive {
		if err := runInteractive(loader, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *typeName == "" && *srvName == "" && *msgFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: cdrtool -type pkg/Name [-size] [-wit] [-decode hex|-] [-set path=value ...]")
		fmt.Fprintln(os.Stderr, "       cdrtool -srv pkg/Name -part request|response ...")
		fmt.Fprintln(os.Stderr, "       cdrtool -msg file.msg [-pkg name] ...")
		fmt.Fprintln(os.Stderr, "       cdrtool -i  (interactive mode)")
		os.Exit(1)
	}

	mm, err := resolve(loader, *typeName, *srvName, *part, *msgFile, *pkg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := typesupport.Options{Config: codec.Config{Encapsulation: *encap}}
	if *bigEndian {
		opts.Config.ByteOrder = binary.BigEndian
	}

	if err := run(mm, opts, logger, *decodeHex, sets, *sizeOnly, *witOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func roots(searchPath string) []string {
	if searchPath == "" {
		return msgspec.PathsFromEnv()
	}
	return filepath.SplitList(searchPath)
}

// resolve picks the schema named on the command line.
func resolve(loader *msgspec.Loader, typeName, srvName, part, msgFile, pkg string) (*introspection.MessageMembers, error) {
	switch {
	case msgFile != "":
		text, err := os.ReadFile(msgFile)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(msgFile), filepath.Ext(msgFile))
		spec, err := loader.AddMessage(pkg, name, string(text))
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return loader.Message(spec.FullName())

	case srvName != "":
		sm, err := loader.Service(srvName)
		if err != nil {
			return nil, fmt.Errorf("load service: %w", err)
		}
		switch part {
		case "request":
			return sm.Request, nil
		case "response":
			return sm.Response, nil
		default:
			return nil, fmt.Errorf("unknown service part %q", part)
		}

	default:
		mm, err := loader.Message(typeName)
		if err != nil {
			return nil, fmt.Errorf("load message: %w", err)
		}
		return mm, nil
	}
}

func run(mm *introspection.MessageMembers, opts typesupport.Options, logger *zap.Logger, decodeHex string, sets []string, sizeOnly, witOut bool) error {
	s, err := newSession(mm, opts, logger)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if sizeOnly {
		fmt.Print(s.describe())
		return nil
	}

	if witOut {
		out, err := s.wit()
		if err != nil {
			return fmt.Errorf("wit: %w", err)
		}
		fmt.Print(out)
		return nil
	}

	if decodeHex != "" {
		if decodeHex == "-" {
			in, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			decodeHex = string(in)
		}
		data, err := parseHex(decodeHex)
		if err != nil {
			return err
		}
		out, err := s.decode(data)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		fmt.Print(out)
		return nil
	}

	data, err := s.encode(sets)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Println(hex.EncodeToString(data))
	return nil
}

// parseHex accepts hex text with any whitespace between digits.
func parseHex(text string) ([]byte, error) {
	data, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, fmt.Errorf("hex input: %w", err)
	}
	return data, nil
}
