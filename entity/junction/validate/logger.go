package validate

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "validate")
