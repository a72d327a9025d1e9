// Command lg compresses a repository into a deterministic, template-
// composed text listing for use as LLM context.
package main

import (
	"fmt"
	"os"

	ucli "github.com/urfave/cli/v2"

	"github.com/lg-tool/lg/internal/cli"
	"github.com/lg-tool/lg/internal/debug"
)

func main() {
	defer debug.Close()

	app := cli.NewApp()
	err := app.Run(os.Args)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "lg: %v\n", err)
	code := 1
	if coder, ok := err.(ucli.ExitCoder); ok {
		code = coder.ExitCode()
	}
	os.Exit(code)
}
