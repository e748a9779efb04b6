// Package devdb bootstraps a throwaway MySQL container for local
// development and integration runs. It starts the container on its own
// docker network, creates the application database and user, and applies
// the embedded schema so the database is queryable before the server has
// ever connected. Expects environment variables to be loaded from .env
// files.
package devdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/devshare/data"
	"github.com/localnerve/devshare/internal/utils"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const defaultImage = "mysql:8.4"

// Containers holds the running dev database and its network.
type Containers struct {
	Network     *testcontainers.DockerNetwork
	DBContainer testcontainers.Container

	// HostDSN is a go-sql-driver DSN reaching the database from the host.
	HostDSN string
	// Host and Port locate the database for server configuration.
	Host string
	Port string
}

// Terminate tears down the container and its network.
func (c *Containers) Terminate(ctx context.Context) {
	if c.DBContainer != nil {
		if err := c.DBContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate database container: %v\n", err)
		}
	}
	if c.Network != nil {
		if err := c.Network.Remove(ctx); err != nil {
			fmt.Printf("Failed to remove network: %v\n", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Start launches the dev database container and initializes it.
func Start(ctx context.Context) (*Containers, error) {
	c := &Containers{}

	imageName := envOr("DB_IMAGE", defaultImage)
	rootPassword := envOr("DB_ROOT_PASSWORD", "root")
	database := envOr("DB_DATABASE", "devshare")
	user := envOr("DB_USER", "devshare")
	password := envOr("DB_PASSWORD", "devshare")
	containerPort := envOr("DB_PORT", "3306")

	// Log whether the image is already local; testcontainers pulls it
	// either way, this just explains the wait.
	if exists, err := imageExists(ctx, imageName); err == nil {
		if exists {
			fmt.Printf("Image %s exists, reusing...\n", imageName)
		} else {
			fmt.Printf("Image %s does not exist, pulling...\n", imageName)
		}
	}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	c.Network = nw

	tcpPort, err := nat.NewPort("tcp", containerPort)
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        imageName,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": rootPassword,
				"MYSQL_DATABASE":      database,
				"MYSQL_USER":          user,
				"MYSQL_PASSWORD":      password,
			},
			WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {"devshare-db"},
			},
		},
		Started: true,
	})
	if err != nil {
		c.Terminate(ctx)
		return nil, fmt.Errorf("failed to start database container: %w", err)
	}
	c.DBContainer = dbContainer

	host, _ := dbContainer.Host(ctx)
	mappedPort, _ := dbContainer.MappedPort(ctx, tcpPort)
	c.Host = host
	c.Port = mappedPort.Port()
	c.HostDSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True",
		user, password, host, mappedPort.Port(), database)

	if err := initialize(host, mappedPort.Port(), rootPassword, database, user, password); err != nil {
		c.Terminate(ctx)
		return nil, err
	}

	fmt.Printf("Dev database ready: DB_HOST=%s DB_PORT=%s DB_DATABASE=%s\n", host, mappedPort.Port(), database)
	return c, nil
}

// initialize waits for the server, ensures database and user exist, and
// applies the embedded schema and privileges.
func initialize(host, port, rootPassword, database, user, password string) error {
	// Mapped port can lag the container's listening state briefly
	for i := 0; i < 30; i++ {
		if utils.PingDatabase(host, port) == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}

	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword, host, port))
	if err != nil {
		return fmt.Errorf("failed to connect for setup: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", user, password),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'%%'", database, user),
		"FLUSH PRIVILEGES",
		fmt.Sprintf("USE %s", database),
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}

	if err := executeSQL(db, data.InitdbMySQLTables); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if database == "devshare" && user == "devshare" {
		if err := executeSQL(db, data.InitdbMySQLPrivileges); err != nil {
			return fmt.Errorf("failed to apply privileges: %w", err)
		}
	}
	return nil
}

// executeSQL runs an embedded SQL file statement by statement. Lines
// starting with -- are comments; our embedded files never use -- inside
// a literal.
func executeSQL(db *sql.DB, script string) error {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), stmt)
		}
	}
	return nil
}

// imageExists checks the local docker daemon for an image tag.
func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}
