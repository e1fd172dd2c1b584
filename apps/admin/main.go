package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mohdshetty/grap/core"
	"github.com/mohdshetty/grap/core/directory"
	"github.com/mohdshetty/grap/core/policy"
	"github.com/mohdshetty/grap/core/submission"
	"github.com/mohdshetty/grap/core/user"
	logsvc "github.com/mohdshetty/grap/services/logger"
	dummydb "github.com/mohdshetty/grap/storage/database/dummy"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	db, err := dummydb.OpenSeeded(conf.SeedFile)
	errAndDie(err)

	// set up policy
	store := policy.NewStore()
	if conf.PolicyFile != "" {
		errAndDie(store.LoadFile(conf.PolicyFile))
	}

	// start CLI
	dirSvc := directory.NewService(dummydb.NewDirectoryRepository(db))
	cli := commandLine{
		conf:   conf,
		out:    os.Stdout,
		usrSvc: user.NewService(dummydb.NewUserRepository(db), dirSvc),
		dirSvc: dirSvc,
		subSvc: submission.NewService(dummydb.NewSubmissionRepository(db), conf.AcademicYear),
		policy: store,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
