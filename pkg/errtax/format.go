package errtax

import "github.com/sirupsen/logrus"

// Format renders err into a log message and structured fields, the way
// errext.Format does for k6's CLI error summaries: the taxonomy and hint
// (if present) are pulled out into fields so operators can grep on them,
// leaving the bare error text as the message.
func Format(err error) (string, logrus.Fields) {
	if err == nil {
		return "", nil
	}
	fields := logrus.Fields{}
	if code, ok := TaxonomyOf(err); ok {
		fields["taxonomy"] = string(code)
	}
	if hint, ok := Hint(err); ok {
		fields["hint"] = hint
	}
	return err.Error(), fields
}

// Fprint logs err through logger at error level, with the taxonomy and
// hint (if any) attached as fields.
func Fprint(logger logrus.FieldLogger, err error) {
	if err == nil {
		return
	}
	text, fields := Format(err)
	logger.WithFields(fields).Error(text)
}
