package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	UploadIDSize       = 10
	NotificationIDSize = 12
)

// GenerateID returns a random alphanumeric id of the given size
func GenerateID(size int) (string, error) {
	return gonanoid.Generate(characters, size)
}
