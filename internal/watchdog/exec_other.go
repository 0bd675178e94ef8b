//go:build !unix

package watchdog

func execProcess(_ string, _ []string, _ []string) error {
	return ErrExecUnsupported
}
