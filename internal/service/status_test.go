package service_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
)

var _ = Describe("status service", func() {
	var (
		ctx context.Context
		s   store.Store
		srv *service.StatusService
	)

	BeforeEach(func() {
		ctx = context.TODO()
		tmp := GinkgoT().TempDir()

		var err error
		s, err = store.NewStore(filepath.Join(tmp, "results"), filepath.Join(tmp, "videos"))
		Expect(err).To(BeNil())
		srv = service.NewStatusService(s)
	})

	newJob := func() (uuid.UUID, string) {
		id := uuid.New()
		dir, err := s.Job().Create(ctx, id)
		Expect(err).To(BeNil())
		return id, dir
	}

	It("returns NotFound for identifiers never submitted", func() {
		st, err := srv.Status(ctx, uuid.NewString())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusNotFound))
	})

	It("returns NotFound for malformed identifiers", func() {
		st, err := srv.Status(ctx, "../../etc")
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusNotFound))
	})

	It("returns Pending with an empty list before any artifact", func() {
		id, _ := newJob()
		Expect(s.Job().Save(ctx, model.Job{ID: id, State: model.JobStateDispatched})).To(Succeed())

		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusPending))
		Expect(st.Files).NotTo(BeNil())
		Expect(st.Files).To(BeEmpty())
	})

	It("returns Pending for directories without descriptor", func() {
		id, _ := newJob()
		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusPending))
	})

	// Done is a weak completion signal: one artifact is enough even when the
	// worker is still writing the others.
	It("returns Done as soon as one artifact is present", func() {
		id, dir := newJob()
		Expect(os.WriteFile(filepath.Join(dir, "sample.txt"), []byte("hello"), 0o644)).To(Succeed())

		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusDone))
		Expect(st.Files).To(HaveLen(1))

		Expect(os.WriteFile(filepath.Join(dir, "sample.srt"), []byte("1"), 0o644)).To(Succeed())
		st, err = srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusDone))
		Expect(st.Files).To(HaveLen(2))

		again, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(again).To(Equal(st))
	})

	It("ignores unrecognized files and the descriptor", func() {
		id, dir := newJob()
		Expect(s.Job().Save(ctx, model.Job{ID: id, State: model.JobStateDispatched})).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "sample.json"), []byte("{}"), 0o644)).To(Succeed())

		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusPending))
	})

	It("returns Failed when the run failed without artifacts", func() {
		id, _ := newJob()
		code := 1
		Expect(s.Job().Save(ctx, model.Job{ID: id, State: model.JobStateFailed, ExitCode: &code, Error: "worker exited with code 1"})).To(Succeed())

		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusFailed))
		Expect(st.Error).To(Equal("worker exited with code 1"))
	})

	It("prefers artifacts over a failed descriptor", func() {
		id, dir := newJob()
		Expect(s.Job().Save(ctx, model.Job{ID: id, State: model.JobStateFailed})).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "sample.vtt"), []byte("WEBVTT"), 0o644)).To(Succeed())

		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusDone))
	})

	It("returns Error when the job path is not a directory", func() {
		id := uuid.New()
		Expect(os.WriteFile(s.JobDir(id), []byte("x"), 0o644)).To(Succeed())

		st, err := srv.Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusError))
		Expect(st.Error).NotTo(BeEmpty())
	})

	It("returns Error when the directory vanishes while it is listed", func() {
		id, _ := newJob()

		st, err := service.NewStatusService(vanishingStore{Store: s}).Status(ctx, id.String())
		Expect(err).To(BeNil())
		Expect(st.Status).To(Equal(service.StatusError))
		Expect(st.Error).NotTo(BeEmpty())
		Expect(st.Files).To(BeEmpty())
	})
})
