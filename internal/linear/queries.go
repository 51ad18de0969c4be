package linear

const issueFields = `
        id
        identifier
        title
        priority
        estimate
        createdAt
        updatedAt
        startedAt
        completedAt
        canceledAt
        state {
          type
        }
        project {
          id
          name
        }
        team {
          id
          key
          name
        }`

const queryViewer = `
  query Viewer {
    viewer {
      id
      name
      displayName
      email
      active
    }
  }`

const queryOrganization = `
  query Organization {
    organization {
      urlKey
      name
    }
  }`

const queryUsers = `
  query Users($first: Int!, $after: String) {
    users(first: $first, after: $after) {
      nodes {
        id
        name
        displayName
        email
        active
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }`

const queryUserIssues = `
  query UserIssues($id: String!, $first: Int!, $after: String) {
    user(id: $id) {
      assignedIssues(first: $first, after: $after) {
        nodes {` + issueFields + `
        }
        pageInfo {
          hasNextPage
          endCursor
        }
      }
    }
  }`

const queryViewerIssues = `
  query ViewerIssues($first: Int!, $after: String) {
    viewer {
      assignedIssues(first: $first, after: $after) {
        nodes {` + issueFields + `
        }
        pageInfo {
          hasNextPage
          endCursor
        }
      }
    }
  }`
