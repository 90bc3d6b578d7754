package run_pipeline_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fsouza/fake-gcs-server/fakestorage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	server_app "github.com/veedubyou/timbre/src/server/application"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/stage/dataset"
	. "github.com/veedubyou/timbre/src/shared/testing"
	"github.com/veedubyou/timbre/src/shared/testing/dummy"
	worker_app "github.com/veedubyou/timbre/src/worker/application"
	"github.com/vmihailenco/msgpack/v5"
)

var _ = Describe("RunPipeline", func() {
	const runTimeout = "60s"

	var (
		server       server_app.App
		worker       worker_app.App
		cloudStorage *fakestorage.Server
		executor     *dummy.Executor
		root         string
	)

	ServerHealthCheck := func() (int, error) {
		response, err := RequestFactory{
			Method:  "GET",
			Target:  ServerEndpoint("/health-check"),
			JSONObj: nil,
			Mods:    nil,
		}.Do()

		if err != nil {
			return 0, err
		}

		return response.StatusCode, nil
	}

	GetRun := func(runID string) map[string]any {
		response := ExpectSuccess(RequestFactory{
			Method: "GET",
			Target: ServerEndpoint("/runs/" + runID),
		}.Do())
		Expect(response.StatusCode).To(Equal(http.StatusOK))

		return DecodeJSON[map[string]any](response.Body)
	}

	GetRunStatus := func(runID string) func() string {
		return func() string {
			return ExpectType[string](GetRun(runID)["status"])
		}
	}

	DownloadFile := func(fileURL string) []byte {
		response := ExpectSuccess(http.Get(fileURL))
		Expect(response.StatusCode).To(Equal(http.StatusOK))
		defer response.Body.Close()

		return ExpectSuccess(io.ReadAll(response.Body))
	}

	BeforeEach(func() {
		ResetDB(db)
		ResetRabbitMQ(rabbitMQConn)
	})

	BeforeEach(func() {
		By("Laying out the research directory")
		root = GinkgoT().TempDir()
		choruses := filepath.Join(root, "choruses")
		Expect(os.MkdirAll(choruses, 0o755)).To(Succeed())

		WriteSineWav(choruses, "Soprano_01.wav", 2, 48000, 1.5)
		WriteSineWav(choruses, "Bass_07.wav", 1, 22050, 1.2)
	})

	BeforeEach(func() {
		By("Initializing Fake Cloud Storage Server")
		cloudStorage = ExpectSuccess(fakestorage.NewServerWithOptions(fakestorage.Options{
			Scheme:     "http",
			PublicHost: "localhost:4443",
			Host:       "localhost",
			Port:       4443,
		}))

		cloudStorage.CreateBucket(bucketName)
	})

	AfterEach(func() {
		cloudStorage.Stop()
	})

	BeforeEach(func() {
		By("Installing the models")
		executor = dummy.NewExecutor()
		executor.Install(DemucsBinName, dummy.Demucs{}.Program())
		executor.Install(OpenL3BinName, dummy.OpenL3{}.Program())
	})

	BeforeEach(func() {
		By("Initializing Worker")
		worker = worker_app.NewApp(
			WorkerConfig(region, config.LocalCloudStorage{
				StorageHost:  cloudStorage.PublicURL(),
				HostEndpoint: fmt.Sprintf("%s/storage/v1/", cloudStorage.PublicURL()),
				BucketName:   bucketName,
			}, executor, filepath.Join(root, "worker-wd")),
		)

		go func() {
			defer GinkgoRecover()

			err := worker.Start(context.Background())
			Expect(err).NotTo(HaveOccurred())
		}()
	})

	AfterEach(func() {
		worker.Stop()
	})

	BeforeEach(func() {
		By("Initializing Server")
		server = server_app.NewApp(ServerConfig(region))

		go func() {
			defer GinkgoRecover()

			err := server.Start()
			Expect(err).NotTo(HaveOccurred())
		}()

		Eventually(ServerHealthCheck).Should(Equal(http.StatusOK))
	})

	AfterEach(func() {
		err := server.Stop()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("A valid run request", func() {
		var runID string

		BeforeEach(func() {
			By("Requesting a run over the research directory")
			response := ExpectSuccess(RequestFactory{
				Method: "POST",
				Target: ServerEndpoint("/runs"),
				JSONObj: map[string]any{
					"root": root,
				},
			}.Do())

			Expect(response.StatusCode).To(Equal(http.StatusCreated))
			run := DecodeJSON[map[string]any](response.Body)
			runID = ExpectType[string](run["id"])
			Expect(runID).NotTo(BeEmpty())
		})

		It("completes the run", func() {
			Eventually(GetRunStatus(runID), runTimeout).Should(Equal("completed"))

			run := GetRun(runID)
			Expect(run["progress"]).To(BeEquivalentTo(100))
			Expect(run["stage"]).To(Equal("extract_embedding"))
		})

		It("mirrors both datasets to cloud storage", func() {
			Eventually(GetRunStatus(runID), runTimeout).Should(Equal("completed"))

			artifacts := ExpectType[map[string]any](GetRun(runID)["artifacts"])
			Expect(artifacts).To(HaveLen(2))

			mfccURL := ExpectType[string](artifacts["all_mfccs.msgpack"])
			Expect(mfccURL).To(Equal(fmt.Sprintf("%s/%s/%s/extract_mfcc/all_mfccs.msgpack",
				cloudStorage.PublicURL(), bucketName, runID)))

			mfccs := dataset.Dataset{}
			Expect(msgpack.Unmarshal(DownloadFile(mfccURL), &mfccs)).To(Succeed())
			Expect(mfccs.Kind).To(Equal(dataset.MFCCKind))
			Expect(mfccs.Names).To(ConsistOf("Soprano_01_mfcc.npy", "Bass_07_mfcc.npy"))

			embeddingURL := ExpectType[string](artifacts["all_embeddings_512.msgpack"])
			embeddings := dataset.Dataset{}
			Expect(msgpack.Unmarshal(DownloadFile(embeddingURL), &embeddings)).To(Succeed())
			Expect(embeddings.EmbeddingSize).To(Equal(512))
			Expect(embeddings.Len()).To(Equal(2))
		})

		It("ran both models", func() {
			Eventually(GetRunStatus(runID), runTimeout).Should(Equal("completed"))

			Expect(executor.CalledNames()).To(ContainElements(DemucsBinName, OpenL3BinName))
		})
	})

	Describe("A run over a research directory without choruses", func() {
		var runID string

		BeforeEach(func() {
			Expect(os.RemoveAll(filepath.Join(root, "choruses"))).To(Succeed())

			response := ExpectSuccess(RequestFactory{
				Method: "POST",
				Target: ServerEndpoint("/runs"),
				JSONObj: map[string]any{
					"root": root,
				},
			}.Do())

			Expect(response.StatusCode).To(Equal(http.StatusCreated))
			runID = ExpectType[string](DecodeJSON[map[string]any](response.Body)["id"])
		})

		It("reports the error on the run", func() {
			Eventually(GetRunStatus(runID), runTimeout).Should(Equal("error"))

			run := GetRun(runID)
			Expect(run["stage"]).To(Equal("preprocess"))
			Expect(run["status_message"]).To(Equal("Failed to standardize the input choruses"))
			Expect(run["status_debug_log"]).NotTo(BeEmpty())
		})
	})
})
