package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/guard"
)

// readInput reads path, or stdin for "" and "-", without ever holding more
// than maxSize+1 bytes. A regular file larger than maxSize is rejected from
// its size alone.
func readInput(cmd *cobra.Command, path string, maxSize int64) ([]byte, error) {
	var src io.Reader
	if path == "" || path == "-" {
		src = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && maxSize >= 0 && info.Size() > maxSize {
			return nil, guard.SizeRejection(maxSize, info.Size())
		}
		src = f
	}

	if maxSize >= 0 {
		src = io.LimitReader(src, maxSize+1)
	}
	return io.ReadAll(src)
}

func argOrStdin(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return "-"
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
