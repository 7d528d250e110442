package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxjob/transcriber/internal/dispatch"
	"github.com/voxjob/transcriber/internal/events"
	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
	"github.com/voxjob/transcriber/internal/worker"
)

var _ = Describe("job service", func() {
	var (
		ctx         context.Context
		s           store.Store
		resultsRoot string
		uploadsRoot string
		target      *slowTarget
		locator     *fakeLocator
		pool        *dispatch.Pool
		writer      *testWriter
		srv         *service.JobService
	)

	BeforeEach(func() {
		ctx = context.TODO()
		tmp := GinkgoT().TempDir()
		resultsRoot = filepath.Join(tmp, "results")
		uploadsRoot = filepath.Join(tmp, "videos")

		var err error
		s, err = store.NewStore(resultsRoot, uploadsRoot)
		Expect(err).To(BeNil())

		target = newSlowTarget()
		locator = &fakeLocator{target: target}
		pool = dispatch.NewPool(1, 8)
		writer = &testWriter{}

		inputs, err := dispatch.NewPathMapper(uploadsRoot, "/data/videos")
		Expect(err).To(BeNil())
		results, err := dispatch.NewPathMapper(resultsRoot, "/data/results")
		Expect(err).To(BeNil())

		d := dispatch.NewDispatcher(locator, pool, s.Job(),
			dispatch.WithInputMapping(inputs),
			dispatch.WithResultMapping(results),
		)
		srv = service.NewJobService(s, d, writer)
	})

	AfterEach(func() {
		select {
		case <-target.release:
		default:
			close(target.release)
		}
		Expect(pool.Stop(context.Background())).To(Succeed())
	})

	jobDirs := func() []os.DirEntry {
		entries, err := os.ReadDir(resultsRoot)
		Expect(err).To(BeNil())
		return entries
	}

	It("accepts a job without waiting for the transcription", func() {
		start := time.Now()
		info, err := srv.Submit(ctx, service.SubmitRequest{
			Filename:  "sample.wav",
			ModelTier: "small",
			Body:      strings.NewReader("RIFF"),
		})
		Expect(err).To(BeNil())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))

		Expect(info.Filename).To(Equal("sample.wav"))
		Expect(info.ModelTier).To(Equal("small"))
		Expect(s.JobDir(info.ID)).To(BeADirectory())
		Expect(filepath.Join(uploadsRoot, info.ID.String(), "sample.wav")).To(BeARegularFile())

		job, err := s.Job().Get(ctx, info.ID)
		Expect(err).To(BeNil())
		Expect(job.State).To(Equal(model.JobStateDispatched))
		Expect(job.Worker).To(Equal("whisper_worker-1"))
		Expect(writer.Kinds()).To(ContainElement(events.JobSubmittedKind))

		close(target.release)
		Eventually(func() model.JobState {
			j, err := s.Job().Get(ctx, info.ID)
			if err != nil {
				return ""
			}
			return j.State
		}).Should(Equal(model.JobStateSucceeded))
	})

	It("issues a new identifier for every submission", func() {
		a, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		Expect(err).To(BeNil())
		b, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		Expect(err).To(BeNil())
		Expect(a.ID).NotTo(Equal(b.ID))
	})

	It("defaults to the smallest model tier", func() {
		info, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		Expect(err).To(BeNil())
		Expect(info.ModelTier).To(Equal(model.DefaultModelTier))
		Expect(info.ModelTier).To(Equal(model.ModelTiers[0]))
	})

	It("strips directories from the uploaded name", func() {
		info, err := srv.Submit(ctx, service.SubmitRequest{Filename: "../../clip.mp4", Body: strings.NewReader("x")})
		Expect(err).To(BeNil())
		Expect(info.Filename).To(Equal("clip.mp4"))
	})

	DescribeTable("rejects invalid submissions",
		func(req service.SubmitRequest) {
			_, err := srv.Submit(ctx, req)
			var validationErr *service.ErrValidation
			Expect(errors.As(err, &validationErr)).To(BeTrue())
			Expect(jobDirs()).To(BeEmpty())
		},
		Entry("unknown model tier", service.SubmitRequest{Filename: "a.wav", ModelTier: "huge", Body: strings.NewReader("x")}),
		Entry("missing body", service.SubmitRequest{Filename: "a.wav"}),
		Entry("missing filename", service.SubmitRequest{Filename: "  ", Body: strings.NewReader("x")}),
	)

	It("issues no identifier when the worker is absent", func() {
		locator.err = worker.NewErrWorkerNotFound("whisper_worker")

		info, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		Expect(info).To(BeNil())
		var notFound *worker.ErrWorkerNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(jobDirs()).To(BeEmpty())

		uploads, err := os.ReadDir(uploadsRoot)
		Expect(err).To(BeNil())
		Expect(uploads).To(BeEmpty())
	})

	It("reports a worker that is not running", func() {
		locator.err = worker.NewErrWorkerNotReady("whisper_worker-1", "exited")

		_, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		var notReady *worker.ErrWorkerNotReady
		Expect(errors.As(err, &notReady)).To(BeTrue())
		Expect(notReady.State).To(Equal("exited"))
		Expect(jobDirs()).To(BeEmpty())
	})

	It("reports an unreachable worker and records the failure", func() {
		target.startErr = worker.NewErrDispatch("whisper_worker-1", errors.New("connection refused"))

		_, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		var dispatchErr *worker.ErrDispatch
		Expect(errors.As(err, &dispatchErr)).To(BeTrue())

		dirs := jobDirs()
		Expect(dirs).To(HaveLen(1))
		data, err := os.ReadFile(filepath.Join(resultsRoot, dirs[0].Name(), store.DescriptorFile))
		Expect(err).To(BeNil())
		Expect(string(data)).To(ContainSubstring(`"state": "failed"`))
	})

	It("reports storage failures", func() {
		Expect(os.RemoveAll(uploadsRoot)).To(Succeed())
		Expect(os.WriteFile(uploadsRoot, []byte("not a directory"), 0o644)).To(Succeed())

		_, err := srv.Submit(ctx, service.SubmitRequest{Filename: "sample.wav", Body: strings.NewReader("x")})
		var storageErr *service.ErrStorage
		Expect(errors.As(err, &storageErr)).To(BeTrue())
		Expect(jobDirs()).To(BeEmpty())
	})
})
