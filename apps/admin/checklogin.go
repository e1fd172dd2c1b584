package main

import (
	"fmt"
)

func (cli *commandLine) checkLogin(uname, pwd string) error {
	usr, err := cli.usrSvc.Login(uname, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s, %s) can log in\n", usr.Name, usr.Username, usr.Role)
	return nil
}
