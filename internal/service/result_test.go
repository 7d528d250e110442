package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/internal/store"
)

var _ = Describe("result service", func() {
	var (
		ctx context.Context
		s   store.Store
		srv *service.ResultService
		id  uuid.UUID
		dir string
	)

	BeforeEach(func() {
		ctx = context.TODO()
		tmp := GinkgoT().TempDir()

		var err error
		s, err = store.NewStore(filepath.Join(tmp, "results"), filepath.Join(tmp, "videos"))
		Expect(err).To(BeNil())
		srv = service.NewResultService(s)

		id = uuid.New()
		dir, err = s.Job().Create(ctx, id)
		Expect(err).To(BeNil())
		Expect(os.WriteFile(filepath.Join(dir, "sample.srt"), []byte("1\n00:00:00,000 --> 00:00:01,000\nhi\n"), 0o644)).To(Succeed())
	})

	It("opens an artifact", func() {
		d, err := srv.Open(ctx, id.String(), "sample.srt")
		Expect(err).To(BeNil())
		defer d.File.Close()

		Expect(d.Filename).To(Equal("sample.srt"))
		data, err := io.ReadAll(d.File)
		Expect(err).To(BeNil())
		Expect(string(data)).To(HavePrefix("1\n"))
	})

	DescribeTable("denies names leaving the job directory",
		func(jobID, filename string) {
			_, err := srv.Open(ctx, jobID, filename)
			var denied *service.ErrAccessDenied
			Expect(errors.As(err, &denied)).To(BeTrue())
		},
		Entry("parent reference", uuid.NewString(), "../../etc/passwd"),
		Entry("absolute path", uuid.NewString(), "/etc/passwd"),
		Entry("backslash", uuid.NewString(), `..\secret`),
		Entry("nested path", uuid.NewString(), "a/b.txt"),
		Entry("malformed job id", "not-a-uuid", "../x"),
	)

	It("denies traversal for an existing job", func() {
		_, err := srv.Open(ctx, id.String(), "../"+id.String()+"/sample.srt")
		var denied *service.ErrAccessDenied
		Expect(errors.As(err, &denied)).To(BeTrue())
	})

	It("does not serve the descriptor", func() {
		Expect(os.WriteFile(filepath.Join(dir, store.DescriptorFile), []byte("{}"), 0o644)).To(Succeed())

		_, err := srv.Open(ctx, id.String(), store.DescriptorFile)
		var notFound *service.ErrResourceNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	DescribeTable("returns not found",
		func(jobID func() string, filename string) {
			_, err := srv.Open(ctx, jobID(), filename)
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		},
		Entry("missing file", func() string { return id.String() }, "sample.txt"),
		Entry("unknown job", func() string { return uuid.NewString() }, "sample.srt"),
		Entry("malformed job id", func() string { return "abc" }, "sample.srt"),
	)
})
