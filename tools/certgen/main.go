// Package main generates a development Certificate Authority and a server
// certificate signed by it, writing them under the "certs" directory.
//
// Serve HTTPS with -cert certs/server.crt -key certs/server.key and point
// the client at the CA with -ca certs/ca.crt.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atinyakov/cookieauth/internal/certgen"
)

func main() {
	var (
		dir   string
		hosts string
		days  int
	)
	flag.StringVar(&dir, "dir", "certs", "output directory")
	flag.StringVar(&hosts, "hosts", "localhost,127.0.0.1", "comma-separated server hostnames and IPs")
	flag.IntVar(&days, "days", 365, "server certificate validity in days")
	flag.Parse()

	if err := run(dir, strings.Split(hosts, ","), time.Duration(days)*24*time.Hour); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into ./%s\n", dir)
}

// run writes ca.crt/ca.key and server.crt/server.key into dir.
func run(dir string, hosts []string, validFor time.Duration) error {
	ca, err := certgen.GenerateCA("cookieauth dev CA", 10*365*24*time.Hour)
	if err != nil {
		return err
	}
	caKey, err := ca.KeyPEM()
	if err != nil {
		return err
	}
	if err := certgen.WritePair(dir, "ca", ca.CertPEM(), caKey); err != nil {
		return err
	}

	certPEM, keyPEM, err := ca.IssueServerCertificate(hosts, validFor)
	if err != nil {
		return err
	}
	return certgen.WritePair(dir, "server", certPEM, keyPEM)
}
