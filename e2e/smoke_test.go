//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const repoRootRel = ".."   // relative to ./e2e
const mainPkgRel = "./cmd" // main.go lives in cmd/

// seedSQL is a cut-down hawaii.sqlite: two stations, USC00519281 the most active.
const seedSQL = "CREATE TABLE station (id INTEGER PRIMARY KEY, station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT);" +
	"CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp FLOAT, tobs FLOAT);" +
	"INSERT INTO station (station, name, latitude, longitude, elevation) VALUES " +
	"('USC00519397', 'WAIKIKI 717.2, HI US', 21.2716, -157.8168, 3.0)," +
	"('USC00519281', 'WAIHEE 837.5, HI US', 21.45167, -157.84889, 32.9);" +
	"INSERT INTO measurement (station, date, prcp, tobs) VALUES " +
	"('USC00519397', '2017-01-01', 0.0, 62.0)," +
	"('USC00519281', '2016-08-01', 0.2, 74.0)," +
	"('USC00519281', '2017-01-01', NULL, 70.0)," +
	"('USC00519281', '2017-08-23', 0.45, 76.0);"

func TestSmoke_Endpoints(t *testing.T) {
	repoRoot := repoRootPath(t)

	// Start SQLite "service" container that creates the dataset in a host temp dir
	sqlitePath := startSQLite(t)

	bin := buildBinary(t, repoRoot)
	addr := pickFreeAddr(t)

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"APP_ENV=dev",
		"LOG_LEVEL=info",
		"HTTP_ADDR="+addr,
		"DB_DRIVER=sqlite3",
		"SQLITE_PATH="+sqlitePath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + addr

	waitForOK(t, client, base+"/healthz", 5*time.Second)

	var precipitation []map[string]any
	getJSON(t, client, base+"/api/v1.0/precipitation", http.StatusOK, &precipitation)
	if len(precipitation) != 4 {
		t.Fatalf("precipitation len=%d want=4", len(precipitation))
	}

	var stations []string
	getJSON(t, client, base+"/api/v1.0/stations", http.StatusOK, &stations)
	if len(stations) != 2 {
		t.Fatalf("stations=%v want 2 ids", stations)
	}

	var tobs []map[string]any
	getJSON(t, client, base+"/api/v1.0/tobs", http.StatusOK, &tobs)
	if len(tobs) != 2 {
		t.Fatalf("tobs len=%d want=2 (%v)", len(tobs), tobs)
	}
	for _, o := range tobs {
		if o["station"] != "USC00519281" {
			t.Fatalf("tobs station=%v want=USC00519281", o["station"])
		}
	}

	var summary map[string]any
	getJSON(t, client, base+"/api/v1.0/2017-01-01/2017-01-01", http.StatusOK, &summary)
	if summary["tmin"] != 62.0 || summary["tmax"] != 70.0 || summary["tavg"] != 66.0 {
		t.Fatalf("summary=%v want tmin=62 tmax=70 tavg=66", summary)
	}

	var errBody map[string]string
	getJSON(t, client, base+"/api/v1.0/2999-01-01", http.StatusNotFound, &errBody)
	if errBody["kind"] != "NoDataInRange" {
		t.Fatalf("kind=%q want=NoDataInRange", errBody["kind"])
	}
	getJSON(t, client, base+"/api/v1.0/2017-02-30", http.StatusBadRequest, &errBody)
	if errBody["kind"] != "BadRequest" {
		t.Fatalf("kind=%q want=BadRequest", errBody["kind"])
	}

	stopServer(t, cmd)
}

func TestSmoke_MissingDatasetExitsNonZero(t *testing.T) {
	bin := buildBinary(t, repoRootPath(t))

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"HTTP_ADDR="+pickFreeAddr(t),
		"SQLITE_PATH="+filepath.Join(t.TempDir(), "missing.sqlite"),
	)
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("run = %v; want exit status 1", err)
	}
}

func getJSON(t *testing.T, client *http.Client, url string, wantStatus int, out any) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status=%d want=%d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode json: %v", url, err)
	}
}

func startSQLite(t *testing.T) string {
	t.Helper()

	hostDir := t.TempDir()
	dbPath := filepath.Join(hostDir, "hawaii.sqlite")

	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:      "nouchka/sqlite3:latest",
		WorkingDir: "/data",
		// Seed the dataset and keep container alive
		Entrypoint: []string{"sh", "-c"},
		Cmd: []string{
			"sqlite3 /data/hawaii.sqlite \"" + seedSQL + "\" && " +
				"chmod 644 /data/hawaii.sqlite && " +
				"echo 'sqlite ready' && " +
				"tail -f /dev/null",
		},

		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Binds = append(hc.Binds, hostDir+":/data")
		},
		WaitingFor: wait.ForLog("sqlite ready").WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start sqlite container: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	// Ensure file exists on host (container created it in the bind mount)
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("sqlite db file not created: %v", err)
	}

	return dbPath
}

func repoRootPath(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	repo := filepath.Clean(filepath.Join(wd, repoRootRel))
	if _, err := os.Stat(filepath.Join(repo, "go.mod")); err != nil {
		t.Fatalf("repo root %q does not contain go.mod: %v", repo, err)
	}

	return repo
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()

	tmp := t.TempDir()
	out := filepath.Join(tmp, "climate-server")

	build := exec.Command("go", "build", "-o", out, mainPkgRel)
	build.Dir = repoRoot
	build.Env = os.Environ()

	b, err := build.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(b))
	}

	return out
}

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer ln.Close()

	return ln.Addr().String()
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func stopServer(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	_ = cmd.Process.Signal(syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		t.Fatalf("server did not exit in time")
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				t.Fatalf("server exited non-zero: %v", err)
			}
			t.Fatalf("server wait error: %v", err)
		}
	}
}
