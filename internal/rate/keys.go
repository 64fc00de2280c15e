package rate

func loginIdentifierKey(identifier string) string {
	return "rl:li:" + identifier
}

func loginIPKey(ip string) string {
	return "rl:ip:" + ip
}

func refreshUserKey(userID string) string {
	return "rl:rf:" + userID
}
