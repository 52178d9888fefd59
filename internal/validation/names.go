package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// ResourceIDPattern определяет допустимый формат id базы данных, коллекции и документа.
// Запрещены символы, которые ломают адрес ресурса: / \ ? #
var ResourceIDPattern = regexp.MustCompile(`^[^/\\?#]{1,255}$`)

// RegionPattern имя региона: буквы, цифры, пробелы и дефисы, например "West US 2"
var RegionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{0,63}$`)

// ValidateResourceID проверяет id базы данных, коллекции или документа
func ValidateResourceID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("%s id must not have leading or trailing spaces", kind)
	}
	if !ResourceIDPattern.MatchString(id) {
		return fmt.Errorf("%s id %q contains forbidden characters (/ \\ ? #) or is too long", kind, id)
	}
	return nil
}

// ValidateRegion проверяет имя региона
func ValidateRegion(region string) error {
	if region == "" {
		return fmt.Errorf("region cannot be empty")
	}
	if !RegionPattern.MatchString(region) {
		return fmt.Errorf("invalid region name %q", region)
	}
	return nil
}

// ValidateRegions проверяет упорядоченный список регионов: непустой и без дубликатов
func ValidateRegions(regions []string) error {
	if len(regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}

	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		if err := ValidateRegion(r); err != nil {
			return err
		}
		key := strings.ToLower(r)
		if seen[key] {
			return fmt.Errorf("duplicate region %q", r)
		}
		seen[key] = true
	}
	return nil
}
