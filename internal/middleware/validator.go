package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

const maxImageBytes = 10 << 20 // 10 MiB upload cap

// ValidateMimeType checks the uploaded image content type
func ValidateMimeType(mimeType string) error {
	allowed := map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	}

	if !allowed[strings.ToLower(mimeType)] {
		return fmt.Errorf("unsupported image type: %s (allowed: image/jpeg, image/png, image/webp)", mimeType)
	}
	return nil
}

// ValidateImageSize rejects empty and oversized uploads
func ValidateImageSize(size int) error {
	if size == 0 {
		return fmt.Errorf("image cannot be empty")
	}
	if size > maxImageBytes {
		return fmt.Errorf("image too large (max %d bytes)", maxImageBytes)
	}
	return nil
}

// ValidateLocation validates the free-text location field
func ValidateLocation(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return fmt.Errorf("location cannot be empty")
	}
	if len(location) > 255 {
		return fmt.Errorf("location too long (max 255 chars)")
	}

	dangerous := []string{"\x00", "\n", "\r", "<", ">"}
	for _, d := range dangerous {
		if strings.Contains(location, d) {
			return fmt.Errorf("invalid characters in location")
		}
	}

	return nil
}

// ValidateLanguage validates the report language selector
func ValidateLanguage(language string) error {
	if language == "" {
		return nil // defaults to English downstream
	}

	pattern := `^[a-zA-Z][a-zA-Z ()-]{1,31}$`
	matched, _ := regexp.MatchString(pattern, language)
	if !matched {
		return fmt.Errorf("invalid language format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
