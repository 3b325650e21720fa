package failure

//sqlxplus:insertable mysql names
type Names []string
