package images

import (
	"context"
	"fmt"
	"os"
)

// Open selects an image store driver from the environment.
//
//	IMAGE_DRIVER: fs|s3|memory (default fs)
//	IMAGE_FS_ROOT: directory root when driver=fs (default ./imagedata)
//	(S3 variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("IMAGE_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystemStore(os.Getenv("IMAGE_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown image driver %s", driver)
	}
}
