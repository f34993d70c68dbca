package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	log "github.com/sirupsen/logrus"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("storage provisioning starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}
	table := os.Getenv("DOCUMENTS_TABLE")
	if table == "" {
		log.Fatal("missing DOCUMENTS_TABLE")
	}

	if err := createTable(context.Background(), connStr, table); err != nil {
		log.Fatalf("create table: %v", err)
	}

	log.Info("storage provisioning complete")
}

func createTable(ctx context.Context, connStr, name string) error {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, nil)
	if err != nil {
		return err
	}
	_, err = svc.NewClient(name).CreateTable(ctx, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}
