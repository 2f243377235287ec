package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
)

// HashBytes returns the hex SHA-256 of data. Used to fingerprint uploaded files.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GenerateImageHash hashes the RGBA values of every pixel so two renders of
// the same page can be compared regardless of encoder output.
func GenerateImageHash(img image.Image) (string, error) {
	if rgba, ok := img.(*image.RGBA); img == nil || ok && rgba == nil {
		return "", fmt.Errorf("nil image")
	}
	hasher := sha256.New()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			fmt.Fprintf(hasher, "%d%d%d%d", r, g, b, a)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
