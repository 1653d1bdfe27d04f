package sshkey

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Parse splits a raw public key string (like one record from the GitHub
// meta API) into its three core components: algorithm, key data, and
// comment. It correctly handles leading decorations before the algorithm
// tag.
func Parse(rawKey string) (algorithm, keyData, comment string, err error) {
	fields := strings.Fields(rawKey)
	if len(fields) == 0 {
		err = fmt.Errorf("empty line")
		return
	}

	keyStartIndex := -1
	for i, field := range fields {
		if strings.HasPrefix(field, "ssh-") || strings.HasPrefix(field, "ecdsa-") {
			keyStartIndex = i
			break
		}
	}

	if keyStartIndex == -1 {
		err = fmt.Errorf("no valid SSH key type found in line")
		return
	}

	if len(fields) < keyStartIndex+2 {
		err = fmt.Errorf("invalid public key format: missing key data after algorithm")
		return
	}

	algorithm = fields[keyStartIndex]
	keyData = fields[keyStartIndex+1]
	if len(fields) > keyStartIndex+2 {
		comment = strings.Join(fields[keyStartIndex+2:], " ")
	}

	return
}

// Validate checks that the base64 material is a well-formed SSH public key
// and that the embedded wire type matches the declared algorithm tag.
func Validate(algorithm, keyData string) error {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(algorithm + " " + keyData))
	if err != nil {
		return fmt.Errorf("invalid %s key material: %w", algorithm, err)
	}
	if pub.Type() != algorithm {
		return fmt.Errorf("key material is %s but declared as %s", pub.Type(), algorithm)
	}
	return nil
}

// Fingerprint returns the SHA256 fingerprint of the given key in the
// OpenSSH notation (SHA256:...).
func Fingerprint(algorithm, keyData string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(algorithm + " " + keyData))
	if err != nil {
		return "", fmt.Errorf("invalid %s key material: %w", algorithm, err)
	}
	return ssh.FingerprintSHA256(pub), nil
}
