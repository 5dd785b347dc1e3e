// Package helpers provides shared testing utilities for the integration
// test suite.
package helpers

import (
	"crypto/rand"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"recmd/internal/crypto"
)

// GenerateTestKey generates a random symmetric key suitable for
// crypto.NewCipher.
func GenerateTestKey() []byte {
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("failed to generate key: %v", err))
	}
	return key
}

// RandomBytes generates random bytes of the specified length.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate random bytes: %v", err))
	}
	return b
}

// PickPort picks an available TCP port for testing by binding to port 0
// and immediately releasing it.
func PickPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen failed: %v", err)
	}
	defer ln.Close()

	return ln.Addr().(*net.TCPAddr).Port
}

// PickPortString picks an available TCP port and returns it as a string.
func PickPortString(t *testing.T) string {
	t.Helper()
	return strconv.Itoa(PickPort(t))
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		select {
		case <-ticker.C:
			continue
		case <-time.After(time.Until(deadline)):
			return false
		}
	}
	return false
}
