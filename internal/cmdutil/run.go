package cmdutil

import "time"

// Timed runs fn as a named step and reports its elapsed time at info level.
// The error from fn is returned untouched.
func Timed(log *Logger, name string, fn func() error) error {
	start := time.Now()
	log.Infof("%s: started", name)
	err := fn()
	if err != nil {
		log.Infof("%s: failed after %s", name, time.Since(start).Round(time.Millisecond))
		return err
	}
	log.Infof("%s: finished in %s", name, time.Since(start).Round(time.Millisecond))
	return nil
}
