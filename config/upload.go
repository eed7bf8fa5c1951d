package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

var UploadContexts = map[string]UploadConfig{
	"order_file": {
		AllowedMimeTypes: []string{
			"application/pdf",
			"image/jpeg",
			"image/png",
			// docx/xlsx определяются как zip
			"application/zip",
		},
		MaxSizeMB:  20,
		PathPrefix: "orders",
	},
}
