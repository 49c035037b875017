package stderr

import (
	"bufio"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// forward logs every non-blank line read from r until r is exhausted.
func forward(r io.Reader, log logrus.FieldLogger) {
	log = log.WithField("component", "stderr")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		log.WithField("line", line).Warn("Audio backend output")
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Debug("Stderr capture ended")
	}
}
