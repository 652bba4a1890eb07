package restyutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"hellchannel/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const report_fs_output = "restyutil.fs-output"

// FilesystemOutput writes one file per HTTP message into a directory.
type FilesystemOutput struct {
	directory string
	tel       telemetry.API
}

func NewFilesystemOutput(dir string, tel telemetry.API) FilesystemOutput {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		tel.ReportWarning(report_fs_output, fmt.Errorf("create dir: %w", err), dir)
	}
	return FilesystemOutput{directory: dir, tel: tel}
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		o.tel.ReportWarning(report_fs_output, fmt.Errorf("write: %w", err), id)
	}
}

// DumpResponses writes every response the client receives to out.
func DumpResponses(client *resty.Client, out FilesystemOutput) {
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := fmt.Sprintf("%04d.txt", atomic.AddUint64(&counter, 1))
		out.Write(id, formatHttpMessage(res))
		return nil
	})
}
