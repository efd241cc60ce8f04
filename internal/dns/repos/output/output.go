// Package output serializes a compacted block set as a plain list or as a
// BIND response-policy style zone.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// BindPreamble opens every generated zone. The trailing spaces after the
// comments are part of the format consumers diff against.
const BindPreamble = "$TTL 60\n" +
	"@   IN    SOA  localhost. root.localhost.  (\n" +
	"        2   ; serial \n" +
	"        3H  ; refresh \n" +
	"        1H  ; retry \n" +
	"        1W  ; expiry \n" +
	"        1H) ; minimum \n" +
	"    IN    NS    localhost.\n"

// NameLister is a finished block index.
type NameLister interface {
	Names() []string
}

// WritePlain writes one name per line, each index in ascending order.
func WritePlain(w io.Writer, indexes ...NameLister) error {
	for _, x := range indexes {
		if x == nil {
			continue
		}
		for _, name := range x.Names() {
			if _, err := io.WriteString(w, name+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteBind writes the preamble and, per name, a record for the name and a
// wildcard record for everything below it, both pointing at the root.
func WriteBind(w io.Writer, indexes ...NameLister) error {
	if _, err := io.WriteString(w, BindPreamble); err != nil {
		return err
	}
	for _, x := range indexes {
		if x == nil {
			continue
		}
		for _, name := range x.Names() {
			if _, err := fmt.Fprintf(w, "%s CNAME .\n*.%s CNAME .\n", name, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile creates path and writes the indexes to it, as a zone when bind
// is set and as a plain list otherwise.
func WriteFile(path string, bind bool, indexes ...NameLister) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if bind {
		err = WriteBind(bw, indexes...)
	} else {
		err = WritePlain(bw, indexes...)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
