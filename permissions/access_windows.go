//go:build windows

package permissions

import "os"

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".nativescreenshot-write-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
