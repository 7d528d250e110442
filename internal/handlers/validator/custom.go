package validator

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"

	"github.com/voxjob/transcriber/internal/store/model"
)

// MediaExtensions are the upload extensions the worker can decode.
var MediaExtensions = []string{"mp4", "m4a", "mp3", "wav", "mov", "avi", "flac", "ogg", "aac"}

func modelTierValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return model.IsModelTier(val)
}

func mediaFileValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(val)), ".")
	return ext != "" && funk.ContainsString(MediaExtensions, ext)
}
