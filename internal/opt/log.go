package opt

import "github.com/sirupsen/logrus"

// Logger returns l, or the standard logger when l is nil, tagged with the
// algorithm name.
func Logger(l logrus.FieldLogger, algo string) logrus.FieldLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return l.WithField("algo", algo)
}
