package cmd

import (
	"log"

	"github.com/quatton/qtoken/pkg/qerr"
)

// exitIfStoreError inspects errors returned from the repository and emits
// user-friendly guidance before exiting.
func exitIfStoreError(err error) {
	if err == nil {
		return
	}
	switch {
	case qerr.IsCode(err, qerr.CodeExpiredToken):
		log.Fatalf("token rejected: its expiry is not in the future (%v)", err)
	case qerr.IsCode(err, qerr.CodeTransport):
		log.Fatalf("token store unreachable: check QTOKEN_REDIS_ADDRS and the password (%v)", err)
	case qerr.IsCode(err, qerr.CodeIntegrity):
		log.Fatalf("stored token is unreadable: was it written with another codec? (%v)", err)
	case qerr.IsCode(err, qerr.CodeInvalidProxy):
		log.Fatalf("invalid proxy: expected <entity>:<type>:<id> as printed by 'qtokenctl insert' (%v)", err)
	default:
		log.Fatalf("%v", err)
	}
}
