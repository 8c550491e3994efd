package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// ExtensionPrefix prefixes the name of the executables extending aurora.
const ExtensionPrefix = "aurora-"

// RunExtension attempts to find and execute an external aurora-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := ExtensionPrefix + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		if *Verbose {
			fmt.Fprintf(stderr, "External command %q not found in PATH: %v\n", externalCmdName, err)
		}
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Pass the resolved global flags as environment variables.
	cmd.Env = append(os.Environ(),
		EnvAPIURL+"="+*apiURL,
		EnvTokenStore+"="+*tokenStore,
		EnvCacheDir+"="+*cacheDir,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
